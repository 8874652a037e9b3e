package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/streamtrace/internal/handler"
	"github.com/roach88/streamtrace/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Pipeline errors (E101-E109)
	ErrPipelineNoCalls   = "E101" // at least one call required
	ErrPipelineNameEmpty = "E102" // pipeline name is required
	ErrPipelineDuplicate = "E103" // duplicate pipeline name

	// Call errors (E110-E119)
	ErrCallNameEmpty      = "E110" // call name is required
	ErrCallNameInvalid    = "E111" // call name is not an identifier
	ErrArgTypeEmpty       = "E112" // argument type is required
	ErrArgTextEmpty       = "E113" // argument text is required
	ErrStageAfterTerminal = "E114" // call follows a VOID stage
	ErrStageTypeMismatch  = "E115" // stage type differs from previous call's output
	ErrFixedKeyWithArgs   = "E116" // fixed-key call must not carry an extractor

	// Generator errors (E120-E129)
	ErrGeneratorInvalid = "E120" // unknown renderer or dialect
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var callNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports Pipeline values and pipeline lists.
func Validate(v any) []ValidationError {
	switch p := v.(type) {
	case *ir.Pipeline:
		return validatePipeline(p)
	case ir.Pipeline:
		return validatePipeline(&p)
	case []*ir.Pipeline:
		return validatePipelines(p)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validatePipelines(pipelines []*ir.Pipeline) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, p := range pipelines {
		if p.Name != "" && seen[p.Name] {
			errs = append(errs, ValidationError{
				Field:   "pipeline." + p.Name,
				Message: fmt.Sprintf("duplicate pipeline name %q", p.Name),
				Code:    ErrPipelineDuplicate,
			})
		}
		seen[p.Name] = true
		errs = append(errs, validatePipeline(p)...)
	}
	return errs
}

// validatePipeline validates a single pipeline.
func validatePipeline(p *ir.Pipeline) []ValidationError {
	var errs []ValidationError

	prefix := "pipeline"
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "pipeline",
			Message: "pipeline name is required",
			Code:    ErrPipelineNameEmpty,
		})
	} else {
		prefix = "pipeline." + p.Name
	}

	if len(p.Calls) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".calls",
			Message: "at least one call is required",
			Code:    ErrPipelineNoCalls,
		})
		return errs
	}

	for i, call := range p.Calls {
		field := fmt.Sprintf("%s.calls[%d]", prefix, i)
		errs = append(errs, validateCall(call, field)...)

		if i == 0 {
			continue
		}
		prev := p.Calls[i-1]
		if prev.TypeAfter() == ir.Void {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("call %q follows terminal call %q", call.Name(), prev.Name()),
				Code:    ErrStageAfterTerminal,
			})
			continue
		}
		if call.TypeBefore() != prev.TypeAfter() {
			errs = append(errs, ValidationError{
				Field: field + ".before",
				Message: fmt.Sprintf("stage type %s does not match %s produced by %q",
					call.TypeBefore(), prev.TypeAfter(), prev.Name()),
				Code: ErrStageTypeMismatch,
			})
		}
	}

	return errs
}

func validateCall(call ir.PipelineCall, field string) []ValidationError {
	var errs []ValidationError

	name := strings.TrimSpace(call.Name())
	switch {
	case name == "":
		errs = append(errs, ValidationError{
			Field:   field + ".name",
			Message: "call name is required",
			Code:    ErrCallNameEmpty,
		})
	case !callNamePattern.MatchString(name):
		errs = append(errs, ValidationError{
			Field:   field + ".name",
			Message: fmt.Sprintf("call name %q is not an identifier", name),
			Code:    ErrCallNameInvalid,
		})
	}

	args := call.Arguments()
	for i, arg := range args {
		argField := fmt.Sprintf("%s.args[%d]", field, i)
		if strings.TrimSpace(arg.Type) == "" {
			errs = append(errs, ValidationError{
				Field:   argField + ".type",
				Message: "argument type is required",
				Code:    ErrArgTypeEmpty,
			})
		}
		if strings.TrimSpace(arg.Text) == "" {
			errs = append(errs, ValidationError{
				Field:   argField + ".text",
				Message: "argument text is required",
				Code:    ErrArgTextEmpty,
			})
		}
	}

	if (name == handler.DistinctKeysCallName || name == handler.DistinctValuesCallName) && len(args) > 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".args",
			Message: fmt.Sprintf("%s uses a fixed key extractor and takes no arguments", name),
			Code:    ErrFixedKeyWithArgs,
		})
	}

	return errs
}
