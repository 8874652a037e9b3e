package handler

import (
	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/ir"
)

// PeekTracer records (time, value) pairs for elements entering and leaving a
// call, without changing what the call produces.
type PeekTracer struct {
	emitter    *emit.Emitter
	typeBefore ir.CanonicalType
	typeAfter  ir.CanonicalType
	before     emit.MapVariable
	after      emit.MapVariable
	observe    bool // false for producers, which have no input stage
}

// NewPeekTracer creates a tracer whose containers are named after base and
// callNumber.
func NewPeekTracer(callNumber int, base string, typeBefore, typeAfter ir.CanonicalType, e *emit.Emitter) *PeekTracer {
	return &PeekTracer{
		emitter:    e,
		typeBefore: typeBefore,
		typeAfter:  typeAfter,
		before:     emit.NewLinkedMap(timeType, valueType(typeBefore), emit.Name(base, callNumber, "PeekBefore")),
		after:      emit.NewLinkedMap(timeType, valueType(typeAfter), emit.Name(base, callNumber, "PeekAfter")),
		observe:    true,
	}
}

// NewProducer creates a tracer for a source call. Only elements leaving the
// source are observed.
func NewProducer(callNumber int, typeAfter ir.CanonicalType, e *emit.Emitter) *PeekTracer {
	t := NewPeekTracer(callNumber, "producer", ir.Object, typeAfter, e)
	t.observe = false
	return t
}

// AdditionalCallsBefore implements Handler.
func (t *PeekTracer) AdditionalCallsBefore() []ir.PipelineCall {
	if !t.observe || t.typeBefore == ir.Void {
		return nil
	}
	return []ir.PipelineCall{t.recordingCall(t.typeBefore, t.before)}
}

// AdditionalCallsAfter implements Handler.
func (t *PeekTracer) AdditionalCallsAfter() []ir.PipelineCall {
	if t.typeAfter == ir.Void {
		return nil
	}
	return []ir.PipelineCall{t.recordingCall(t.typeAfter, t.after)}
}

func (t *PeekTracer) recordingCall(stage ir.CanonicalType, m emit.MapVariable) ir.PipelineCall {
	lambda := t.emitter.Lambda("x", func(b *emit.Block, x emit.Variable) {
		b.Expr(m.Set(t.emitter.CurrentTime(), x))
	})
	return peekCall(stage, t.emitter.Expr(lambda))
}

// AdditionalVariables implements Handler.
func (t *PeekTracer) AdditionalVariables() []emit.Statement {
	return []emit.Statement{t.before.DefaultDeclaration(), t.after.DefaultDeclaration()}
}

// TransformCall implements Handler. The call is kept as is.
func (t *PeekTracer) TransformCall(call ir.PipelineCall) ir.PipelineCall {
	return call
}

// PrepareResult implements Handler.
func (t *PeekTracer) PrepareResult() []emit.Statement {
	b := emit.NewBlock()
	b.Add(t.before.ConvertToArray(t.beforeArray().Name)...)
	b.Add(t.after.ConvertToArray(t.afterArray().Name)...)
	return b.Statements()
}

// ResultExpression implements Handler.
func (t *PeekTracer) ResultExpression() emit.Expression {
	return emit.NewArray{Elem: emit.ObjectType, Items: []emit.Expression{t.beforeArray(), t.afterArray()}}
}

func (t *PeekTracer) beforeArray() emit.Variable {
	return emit.Variable{Name: t.before.Name + "Array", Type: emit.ArrayOf(emit.ObjectType)}
}

func (t *PeekTracer) afterArray() emit.Variable {
	return emit.Variable{Name: t.after.Name + "Array", Type: emit.ArrayOf(emit.ObjectType)}
}
