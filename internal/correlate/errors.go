package correlate

import (
	"errors"
	"fmt"
)

// InconsistencyReason categorizes reconstruction failures.
type InconsistencyReason string

const (
	// ReasonNoMatch: no unconsumed input element holds the output value.
	ReasonNoMatch InconsistencyReason = "NO_MATCH"

	// ReasonKeyReused: a key already collapsed into an earlier output
	// produced a second output.
	ReasonKeyReused InconsistencyReason = "KEY_REUSED"
)

// InconsistencyError reports a trace that cannot have been produced by a
// deduplication forwarding the first element per key. Such traces are never
// mapped on a best-effort basis.
type InconsistencyError struct {
	Reason    InconsistencyReason
	AfterTime int64
	Value     Ref
}

// Error implements the error interface.
func (e *InconsistencyError) Error() string {
	switch e.Reason {
	case ReasonNoMatch:
		return fmt.Sprintf("%s: output %q at time %d has no unconsumed identical input", e.Reason, e.Value, e.AfterTime)
	case ReasonKeyReused:
		return fmt.Sprintf("%s: output %q at time %d repeats an already forwarded key", e.Reason, e.Value, e.AfterTime)
	}
	return fmt.Sprintf("%s: output %q at time %d", e.Reason, e.Value, e.AfterTime)
}

// IsInconsistency returns true if err is or wraps an InconsistencyError.
func IsInconsistency(err error) bool {
	var ie *InconsistencyError
	return errors.As(err, &ie)
}
