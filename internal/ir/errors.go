package ir

import (
	"errors"
	"fmt"
)

// GenerationError represents an error detected while generating
// instrumentation for a single pipeline call.
//
// A GenerationError aborts generation for the affected operation; callers
// must abandon the whole pipeline rather than emit partial code.
type GenerationError struct {
	// Code identifies the error category.
	Code GenerationErrorCode

	// Message is a human-readable description.
	Message string

	// Call is the name of the affected operation, if known.
	Call string

	// CallNumber is the unique number assigned to the affected operation.
	CallNumber int
}

// GenerationErrorCode categorizes generation errors.
type GenerationErrorCode string

const (
	// ErrCodePreconditionViolation indicates a broken generator precondition,
	// such as a missing key extractor or unwrapping a non-optional type.
	ErrCodePreconditionViolation GenerationErrorCode = "PRECONDITION_VIOLATION"

	// ErrCodeUnknownRenderer indicates a renderer name that is not registered.
	ErrCodeUnknownRenderer GenerationErrorCode = "UNKNOWN_RENDERER"

	// ErrCodeUnknownDialect indicates a deduplication dialect that is not
	// supported.
	ErrCodeUnknownDialect GenerationErrorCode = "UNKNOWN_DIALECT"
)

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Call != "" {
		return fmt.Sprintf("%s: %s (call=%s#%d)", e.Code, e.Message, e.Call, e.CallNumber)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPreconditionViolation creates a GenerationError for a broken precondition.
func NewPreconditionViolation(message string) *GenerationError {
	return &GenerationError{
		Code:    ErrCodePreconditionViolation,
		Message: message,
	}
}

// IsPreconditionViolation returns true if the error is a precondition violation.
// Uses errors.As to handle wrapped errors.
func IsPreconditionViolation(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodePreconditionViolation
	}
	return false
}
