package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/ir"
)

// Unit is the rendered instrumentation of one pipeline call, ready for the
// assembly stage.
type Unit struct {
	CallNumber   int               `json:"call_number"`
	Handler      string            `json:"handler"`
	Before       []ir.PipelineCall `json:"before"`
	Call         ir.PipelineCall   `json:"call"`
	After        []ir.PipelineCall `json:"after"`
	Declarations string            `json:"declarations"`
	Finalization string            `json:"finalization"`
	Result       string            `json:"result"`
}

// Generate renders the instrumentation h contributes for call.
func Generate(e *emit.Emitter, callNumber int, h Handler, call ir.PipelineCall) Unit {
	return Unit{
		CallNumber:   callNumber,
		Handler:      handlerKind(h),
		Before:       h.AdditionalCallsBefore(),
		Call:         h.TransformCall(call),
		After:        h.AdditionalCallsAfter(),
		Declarations: e.Code(h.AdditionalVariables()),
		Finalization: e.Code(h.PrepareResult()),
		Result:       e.Expr(h.ResultExpression()),
	}
}

// Snapshot returns a plain representation of the unit for canonical
// serialization.
func (u Unit) Snapshot() map[string]any {
	return map[string]any{
		"call_number":  u.CallNumber,
		"handler":      u.Handler,
		"before":       callSnapshots(u.Before),
		"call":         u.Call.Snapshot(),
		"after":        callSnapshots(u.After),
		"declarations": u.Declarations,
		"finalization": u.Finalization,
		"result":       u.Result,
	}
}

// Fingerprint returns the content address of the unit.
func (u Unit) Fingerprint() (string, error) {
	return ir.UnitFingerprint(u.Snapshot())
}

func callSnapshots(calls []ir.PipelineCall) []any {
	out := make([]any, len(calls))
	for i, c := range calls {
		out[i] = c.Snapshot()
	}
	return out
}

// GeneratePipeline generates units for every call of a pipeline, numbering
// calls from 1 in order. The first call is treated as the pipeline source
// when it has no input stage (its type before is VOID).
//
// Generation is all or nothing: on the first error no units are returned
// and the caller must not instrument the pipeline.
func GeneratePipeline(calls []ir.PipelineCall, e *emit.Emitter, opts ...Option) ([]Unit, error) {
	units := make([]Unit, 0, len(calls))
	for i, call := range calls {
		callNumber := i + 1
		callOpts := opts
		if i == 0 && call.TypeBefore() == ir.Void {
			callOpts = append(append([]Option(nil), opts...), AsProducer())
		}

		h, err := ForCall(callNumber, call, e, callOpts...)
		if err != nil {
			slog.Debug("pipeline generation aborted",
				"call", call.Name(),
				"call_number", callNumber,
				"error", err,
			)
			return nil, fmt.Errorf("generate call %d (%s): %w", callNumber, call.Name(), err)
		}
		units = append(units, Generate(e, callNumber, h, call))
	}
	return units, nil
}

// FormatUnits lays units out as one commented code fragment per call, in
// call order.
func FormatUnits(units []Unit) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "// call %d: %s (%s)\n", u.CallNumber, u.Call.Name(), u.Handler)
		for _, c := range u.Before {
			fmt.Fprintf(&b, "// before: %s\n", formatCall(c))
		}
		fmt.Fprintf(&b, "// call: %s\n", formatCall(u.Call))
		for _, c := range u.After {
			fmt.Fprintf(&b, "// after: %s\n", formatCall(c))
		}
		b.WriteString(u.Declarations)
		b.WriteString(u.Finalization)
		fmt.Fprintf(&b, "return %s;\n", u.Result)
	}
	return b.String()
}

func formatCall(c ir.PipelineCall) string {
	args := c.Arguments()
	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.Text
	}
	return c.Name() + "(" + strings.Join(texts, ", ") + ")"
}
