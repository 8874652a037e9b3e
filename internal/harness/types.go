package harness

import (
	"github.com/roach88/streamtrace/internal/correlate"
	"github.com/roach88/streamtrace/internal/handler"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if the reconstruction outcome matches the expectation.
	Pass bool `json:"pass"`

	// RunID identifies the stored run.
	RunID string `json:"run_id"`

	// Trace is the event sequence the reconstruction ran on.
	Trace correlate.Trace `json:"trace"`

	// Transitions are the reconstructed transitions as read back from the
	// store. Empty when the trace was rejected.
	Transitions []correlate.Transition `json:"transitions"`

	// Direct and Reverse pair the observed inputs and outputs by identity,
	// keyed by time. Unlike Transitions they are defined for any trace.
	Direct  map[int64][]int64 `json:"direct"`
	Reverse map[int64][]int64 `json:"reverse"`

	// Inconsistency is the rejection reason, if the trace was rejected.
	Inconsistency string `json:"inconsistency,omitempty"`

	// Units are the generated code units of the scenario's pipeline.
	Units []handler.Unit `json:"units,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Transitions: []correlate.Transition{},
		Errors:      []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
