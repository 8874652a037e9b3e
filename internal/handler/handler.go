package handler

import (
	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/ir"
)

// Handler instruments a single pipeline call.
type Handler interface {
	// AdditionalCallsBefore returns calls to splice before the original call.
	AdditionalCallsBefore() []ir.PipelineCall

	// AdditionalCallsAfter returns calls to splice after the original call.
	AdditionalCallsAfter() []ir.PipelineCall

	// AdditionalVariables returns declarations populated by the injected
	// observers.
	AdditionalVariables() []emit.Statement

	// TransformCall returns the call to emit in place of call.
	TransformCall(call ir.PipelineCall) ir.PipelineCall

	// PrepareResult returns the finalization block.
	PrepareResult() []emit.Statement

	// ResultExpression returns the expression denoting the exported trace.
	ResultExpression() emit.Expression
}

// PeekCallName is the name of the observation call spliced around calls.
const PeekCallName = "peek"

// peekCall builds a non-mutating observation call on a stage of type t.
// The consumer type follows the primitive specialization of the stage.
func peekCall(t ir.CanonicalType, lambda string) ir.PipelineCall {
	arg := ir.CallArgument{Type: consumerType(t), Text: lambda}
	return ir.NewPipelineCall(PeekCallName, []ir.CallArgument{arg}, t, t, ir.EmptyRange, "")
}

func consumerType(t ir.CanonicalType) string {
	switch t.Kind() {
	case ir.KindInt:
		return "java.util.function.IntConsumer"
	case ir.KindLong:
		return "java.util.function.LongConsumer"
	case ir.KindDouble:
		return "java.util.function.DoubleConsumer"
	}
	return "java.util.function.Consumer<java.lang.Object>"
}

// valueType is the type used to store elements of a stage of type t.
// Primitive stages are stored unboxed; everything else goes through Object.
func valueType(t ir.CanonicalType) emit.Type {
	switch t.Kind() {
	case ir.KindInt, ir.KindLong, ir.KindDouble:
		return emit.TypeOf(t)
	}
	return emit.ObjectType
}

// timeType is the type of the runtime's time counter values.
var timeType = emit.IntType
