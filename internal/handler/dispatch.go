package handler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/ir"
)

// Call names with dedicated handlers.
const (
	DistinctKeysCallName   = "distinctKeys"
	DistinctValuesCallName = "distinctValues"
)

// Dialect selects the generated-code formulation of keyed deduplication.
type Dialect string

const (
	// DialectScan correlates outputs to inputs with an identity scan.
	DialectScan Dialect = "scan"
	// DialectWrapper correlates through identity-keyed wrapper objects.
	DialectWrapper Dialect = "wrapper"
)

// Option configures handler selection.
type Option func(*options)

type options struct {
	dialect  Dialect
	producer bool
}

// WithDialect selects the deduplication formulation.
func WithDialect(d Dialect) Option {
	return func(o *options) {
		if d != "" {
			o.dialect = d
		}
	}
}

// AsProducer marks the call as a pipeline source.
func AsProducer() Option {
	return func(o *options) { o.producer = true }
}

func buildOptions(opts []Option) options {
	o := options{dialect: DialectScan}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ForCall selects and constructs the handler for call.
//
// Keyed deduplication gets a correlating handler; fixed-key deduplication of
// map entries gets a fixed extractor; every other call is traced with a
// PeekTracer.
func ForCall(callNumber int, call ir.PipelineCall, e *emit.Emitter, opts ...Option) (Handler, error) {
	o := buildOptions(opts)

	var (
		h   Handler
		err error
	)
	switch {
	case o.producer:
		h = NewProducer(callNumber, call.TypeAfter(), e)
	case call.Name() == DistinctCallName && len(call.Arguments()) > 0:
		switch o.dialect {
		case DialectScan:
			h, err = NewDistinctByKey(callNumber, call, e)
		case DialectWrapper:
			h, err = NewIdentityWrapperDistinct(callNumber, call, e)
		default:
			err = &ir.GenerationError{
				Code:       ir.ErrCodeUnknownDialect,
				Message:    fmt.Sprintf("unknown dialect %q", o.dialect),
				Call:       call.Name(),
				CallNumber: callNumber,
			}
		}
	case call.Name() == DistinctKeysCallName:
		h, err = NewDistinctKeys(callNumber, call, e)
	case call.Name() == DistinctValuesCallName:
		h, err = NewDistinctValues(callNumber, call, e)
	default:
		h = NewPeekTracer(callNumber, call.Name(), call.TypeBefore(), call.TypeAfter(), e)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("handler selected",
		"call", call.Name(),
		"call_number", callNumber,
		"handler", handlerKind(h),
	)
	return h, nil
}

func handlerKind(h Handler) string {
	switch h := h.(type) {
	case *DistinctByKey:
		if h.fixed {
			return "distinct-fixed-key"
		}
		return "distinct-by-key"
	case *IdentityWrapperDistinct:
		return "distinct-identity-wrapper"
	case *PeekTracer:
		if !h.observe {
			return "producer"
		}
		return "peek"
	}
	return "unknown"
}
