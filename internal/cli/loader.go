package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/streamtrace/internal/compiler"
	"github.com/roach88/streamtrace/internal/ir"
)

// LoadMode controls how errors are handled while loading pipeline descriptions.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading pipeline descriptions from a
// directory.
type LoadResult struct {
	Pipelines []*ir.Pipeline
	Generator compiler.GeneratorConfig
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred while loading pipeline descriptions.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads CUE files from a directory and compiles the generator
// block and every pipeline, in declaration order.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
//
// A nil result means nothing could be compiled at all.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	value, fileCount, err := buildSpecs(dir)
	if err != nil {
		return nil, []error{err}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: fileCount,
		Generator: compiler.DefaultGeneratorConfig(),
	}
	failFast := mode == LoadModeFailFast

	var errs []error
	gen, err := compiler.CompileGenerator(value.LookupPath(cue.ParsePath("generator")))
	if err != nil {
		errs = append(errs, convertCompileError(err, "generator"))
		if failFast {
			return result, errs
		}
	} else {
		result.Generator = gen
	}

	pipelines := value.LookupPath(cue.ParsePath("pipeline"))
	if pipelines.Exists() {
		iter, err := pipelines.Fields()
		if err != nil {
			return result, append(errs, loadErrorf(ErrCodeGeneric, "iterating pipelines: %v", err))
		}
		for iter.Next() {
			p, err := compiler.CompilePipeline(iter.Value())
			if err != nil {
				errs = append(errs, convertCompileError(err, "pipeline."+iter.Label()))
				if failFast {
					return result, errs
				}
				continue
			}
			result.Pipelines = append(result.Pipelines, p)
		}
	}

	if len(result.Pipelines) == 0 && len(errs) == 0 {
		errs = append(errs, loadErrorf(ErrCodeGeneric, "no pipelines found in specs"))
	}
	return result, errs
}

// buildSpecs loads the CUE package in dir and returns its value together
// with the number of .cue files found under dir.
func buildSpecs(dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return cue.Value{}, 0, loadErrorf(ErrCodeNotFound, "specs directory not found: %s", dir)
	case err != nil:
		return cue.Value{}, 0, loadErrorf(ErrCodeNotFound, "error accessing specs directory: %v", err)
	case !info.IsDir():
		return cue.Value{}, 0, loadErrorf(ErrCodeNotFound, "not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, loadErrorf(ErrCodeScanError, "error scanning directory: %v", err)
	}
	if len(files) == 0 {
		return cue.Value{}, 0, loadErrorf(ErrCodeNoFiles, "no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, loadErrorf(ErrCodeLoadFailed, "no CUE instances loaded")
	}
	if err := instances[0].Err; err != nil {
		return cue.Value{}, 0, loadErrorf(ErrCodeLoadFailed, "loading CUE files: %v", err)
	}

	value := cuecontext.New().BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, loadErrorf(ErrCodeBuildFailed, "building CUE value: %v", err)
	}
	return value, len(files), nil
}

func loadErrorf(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// FindCUEFiles returns the .cue files under dir, in lexical order.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDatabase    = "E007" // Database error
	ErrCodeGeneration  = "E008" // Code generation failed
	ErrCodeScenario    = "E009" // Scenario failed or is malformed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "calls":
		return compiler.ErrPipelineNoCalls
	case field == "generator" || strings.HasPrefix(field, "generator."):
		return compiler.ErrGeneratorInvalid
	case strings.HasSuffix(field, ".name"):
		return compiler.ErrCallNameEmpty
	case strings.HasSuffix(field, ".type"):
		return compiler.ErrArgTypeEmpty
	case strings.HasSuffix(field, ".text"):
		return compiler.ErrArgTextEmpty
	default:
		return ErrCodeGeneric
	}
}
