package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/streamtrace/internal/compiler"
	"github.com/roach88/streamtrace/internal/handler"
	"github.com/roach88/streamtrace/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Pipelines int                        `json:"pipelines"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate pipeline descriptions without emitting code",
		Long: `Validate CUE pipeline descriptions and the generator block.

Compiles every pipeline, checks the call chain, and performs a dry
generation run so that handler preconditions (such as a keyed distinct
without a key extractor) are reported without printing any code.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, loadErrorToValidation(err))
	}
	validationErrors = append(validationErrors, validatePipelines(loadResult, formatter)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, len(loadResult.Pipelines), validationErrors)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Pipelines: len(loadResult.Pipelines)})
	}
	fmt.Fprintf(formatter.Writer, "✓ All pipelines valid (%d)\n", len(loadResult.Pipelines))
	return nil
}

// validatePipelines runs schema validation, then a dry generation pass over
// every pipeline that passed it.
func validatePipelines(result *LoadResult, formatter *OutputFormatter) []compiler.ValidationError {
	errs := compiler.Validate(result.Pipelines)
	if len(errs) > 0 {
		return errs
	}

	e, err := result.Generator.Emitter()
	if err != nil {
		return []compiler.ValidationError{{Field: "generator", Message: err.Error(), Code: compiler.ErrGeneratorInvalid}}
	}

	for _, p := range result.Pipelines {
		formatter.VerboseLog("Validating pipeline: %s", p.Name)
		if _, genErr := handler.GeneratePipeline(p.Calls, e, result.Generator.Options()...); genErr != nil {
			errs = append(errs, compiler.ValidationError{
				Field:   generationField(p, genErr),
				Message: genErr.Error(),
				Code:    ErrCodeGeneration,
			})
		}
	}
	return errs
}

func generationField(p *ir.Pipeline, err error) string {
	var ge *ir.GenerationError
	if errors.As(err, &ge) && ge.CallNumber > 0 {
		return fmt.Sprintf("pipeline.%s.calls[%d]", p.Name, ge.CallNumber-1)
	}
	return "pipeline." + p.Name
}

func loadErrorToValidation(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		line := 0
		if loadErr.Pos.IsValid() {
			line = loadErr.Pos.Line()
		}
		return compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    line,
		}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric}
}

// outputLoadError reports an error that prevented loading any specs.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, pipelines int, errs []compiler.ValidationError) error {
	if formatter.Format != "json" {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)

		for _, err := range errs {
			if err.Line > 0 {
				fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		}
	}

	// Validation failures = exit code 1
	result := ValidationResult{Valid: false, Pipelines: pipelines, Errors: errs}
	return formatter.Failure(ExitFailure, errs[0].Code,
		fmt.Sprintf("validation failed with %d error(s)", len(errs)), result)
}
