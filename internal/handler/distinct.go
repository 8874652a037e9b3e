package handler

import (
	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/ir"
)

// DistinctCallName is the name of the keyed deduplication call.
const DistinctCallName = "distinct"

// Fixed key extractors for map-entry streams.
const (
	EntryExtractorType = "java.util.function.Function<java.util.Map.Entry, java.lang.Object>"
)

// DistinctByKey traces a deduplication that forwards the first element seen
// per derived key, and reconstructs afterwards which input elements collapsed
// into which output element.
//
// The key extractor is wrapped so that computing a key also records the
// element's time, value and key. Elements leaving the call are recorded in a
// time-ordered map. Finalization groups input times by key, then matches each
// output value to the first unconsumed input holding the identical object
// and maps every input time of that key to the output time.
type DistinctByKey struct {
	emitter    *emit.Emitter
	callNumber int
	call       ir.PipelineCall
	fixed      bool

	peek         *PeekTracer
	extractor    ir.CallArgument
	extractorVar emit.Variable
	beforeTimes  emit.ListVariable
	beforeValues emit.ListVariable
	keys         emit.ListVariable
	after        emit.MapVariable
}

// NewDistinctByKey creates a handler that uses the call's first argument as
// the key extractor. A call without arguments is a precondition violation.
func NewDistinctByKey(callNumber int, call ir.PipelineCall, e *emit.Emitter) (*DistinctByKey, error) {
	args := call.Arguments()
	if len(args) == 0 {
		return nil, &ir.GenerationError{
			Code:       ir.ErrCodePreconditionViolation,
			Message:    "key extractor is not specified",
			Call:       call.Name(),
			CallNumber: callNumber,
		}
	}

	base := DistinctCallName
	return &DistinctByKey{
		emitter:      e,
		callNumber:   callNumber,
		call:         call,
		peek:         NewPeekTracer(callNumber, base, call.TypeBefore(), call.TypeAfter(), e),
		extractor:    args[0],
		extractorVar: emit.Variable{Name: emit.Name("keyExtractor", callNumber, ""), Type: emit.ClassType(args[0].Type)},
		beforeTimes:  emit.NewList(timeType, emit.Name(base, callNumber, "BeforeTimes")),
		beforeValues: emit.NewList(emit.ObjectType, emit.Name(base, callNumber, "BeforeValues")),
		keys:         emit.NewList(emit.ObjectType, emit.Name(base, callNumber, "Keys")),
		after:        emit.NewLinkedMap(timeType, emit.ObjectType, emit.Name(base, callNumber, "After")),
	}, nil
}

// NewDistinctByFixedKey creates a handler with a constant key extractor. The
// call is normalized to a plain distinct call with an empty source range.
func NewDistinctByFixedKey(callNumber int, call ir.PipelineCall, extractorType, extractorExpr string, e *emit.Emitter) (*DistinctByKey, error) {
	normalized := ir.NewPipelineCall(DistinctCallName,
		[]ir.CallArgument{{Type: extractorType, Text: extractorExpr}},
		call.TypeBefore(), call.TypeAfter(), ir.EmptyRange, call.Package())
	h, err := NewDistinctByKey(callNumber, normalized, e)
	if err != nil {
		return nil, err
	}
	h.fixed = true
	return h, nil
}

// NewDistinctKeys deduplicates map entries by their keys.
func NewDistinctKeys(callNumber int, call ir.PipelineCall, e *emit.Emitter) (*DistinctByKey, error) {
	return NewDistinctByFixedKey(callNumber, call, EntryExtractorType, entryAccessor(e, "getKey"), e)
}

// NewDistinctValues deduplicates map entries by their values.
func NewDistinctValues(callNumber int, call ir.PipelineCall, e *emit.Emitter) (*DistinctByKey, error) {
	return NewDistinctByFixedKey(callNumber, call, EntryExtractorType, entryAccessor(e, "getValue"), e)
}

func entryAccessor(e *emit.Emitter, method string) string {
	return e.Expr(e.Lambda("x", func(b *emit.Block, x emit.Variable) {
		b.Return(x.Call(method))
	}))
}

// AdditionalCallsBefore implements Handler.
func (h *DistinctByKey) AdditionalCallsBefore() []ir.PipelineCall {
	return h.peek.AdditionalCallsBefore()
}

// AdditionalCallsAfter implements Handler.
func (h *DistinctByKey) AdditionalCallsAfter() []ir.PipelineCall {
	calls := h.peek.AdditionalCallsAfter()
	record := h.emitter.Lambda("x", func(b *emit.Block, x emit.Variable) {
		b.Expr(h.after.Set(h.emitter.CurrentTime(), x))
	})
	return append(calls, peekCall(h.call.TypeAfter(), h.emitter.Expr(record)))
}

// AdditionalVariables implements Handler.
func (h *DistinctByKey) AdditionalVariables() []emit.Statement {
	vars := []emit.Statement{
		emit.Declare{Var: h.extractorVar, Init: emit.Text{Code: h.extractor.Text}},
		h.beforeTimes.DefaultDeclaration(),
		h.beforeValues.DefaultDeclaration(),
		h.after.DefaultDeclaration(),
		h.keys.DefaultDeclaration(),
	}
	return append(vars, h.peek.AdditionalVariables()...)
}

// TransformCall implements Handler. The key extractor argument is replaced
// by one that records each element before delegating to the original.
// Everything else about the call is preserved. Fixed-key handlers rewrite
// their normalized call instead of call.
func (h *DistinctByKey) TransformCall(call ir.PipelineCall) ir.PipelineCall {
	if h.fixed {
		call = h.call
	}
	e := h.emitter
	extractor := e.Lambda("x", func(b *emit.Block, x emit.Variable) {
		recorder := e.Lambda("t", func(b *emit.Block, t emit.Variable) {
			b.Expr(h.beforeTimes.Add(e.CurrentTime()))
			b.Expr(h.beforeValues.Add(x))
			b.Expr(h.keys.Add(t))
			b.Return(t)
		})
		b.Return(h.extractorVar.Call("andThen", recorder).Call("apply", x))
	})
	return call.WithArguments([]ir.CallArgument{{Type: h.extractor.Type, Text: e.Expr(extractor)}})
}

// Transitions is the variable holding the exported transitions after
// finalization: new Object[] {beforeTimes, afterTimes}.
func (h *DistinctByKey) Transitions() emit.Variable {
	return emit.Variable{Name: h.name("Transitions"), Type: emit.ArrayOf(emit.ObjectType)}
}

func (h *DistinctByKey) name(suffix string) string {
	return emit.Name(DistinctCallName, h.callNumber, suffix)
}

// PrepareResult implements Handler.
func (h *DistinctByKey) PrepareResult() []emit.Statement {
	b := emit.NewBlock()
	b.Add(h.peek.PrepareResult()...)

	keys2Times := emit.NewMap(emit.ObjectType, emit.ListOf(timeType), h.name("Keys2Times"))
	transitions := emit.NewLinkedMap(timeType, timeType, h.name("TransitionsMap"))
	b.Add(keys2Times.DefaultDeclaration(), transitions.DefaultDeclaration())

	b.CountedLoop(h.name("GroupIndex"), h.keys.Size(), func(b *emit.Block, i emit.Variable) {
		newTimes := h.emitter.Lambda(h.name("NewKey"), func(b *emit.Block, _ emit.Variable) {
			b.Return(emit.Construct{Type: "java.util.ArrayList<>"})
		})
		b.Expr(keys2Times.ComputeIfAbsent(h.keys.Get(i), newTimes).Call("add", h.beforeTimes.Get(i)))
	})

	afterTime := emit.Variable{Name: h.name("AfterTime"), Type: timeType}
	b.ForEach(afterTime, h.after.Keys(), func(b *emit.Block, afterTime emit.Variable) {
		valueAfter := b.Declare(emit.Variable{Name: h.name("ValueAfter"), Type: emit.ObjectType}, h.after.Get(afterTime), false)
		key := b.Declare(emit.Variable{Name: h.name("MatchedKey"), Type: emit.ObjectType}, emit.Null{}, true)
		found := b.Declare(emit.Variable{Name: h.name("Found"), Type: emit.BooleanType}, emit.Text{Code: "false"}, true)

		b.CountedLoop(h.name("ScanIndex"), h.beforeTimes.Size(), func(b *emit.Block, j emit.Variable) {
			unconsumed := emit.Negate(transitions.Contains(h.beforeTimes.Get(j)))
			b.If(emit.And(emit.Same(valueAfter, h.beforeValues.Get(j)), unconsumed), func(b *emit.Block) {
				b.Assign(key, h.keys.Get(j))
				b.Assign(found, emit.Text{Code: "true"})
				b.Break()
			})
		})

		b.If(emit.Negate(found), func(b *emit.Block) {
			b.Throw(h.name("") + ": output element has no unconsumed identical input element")
		})

		beforeTime := emit.Variable{Name: h.name("BeforeTime"), Type: timeType}
		b.ForEach(beforeTime, keys2Times.Get(key), func(b *emit.Block, beforeTime emit.Variable) {
			putTransition(b, transitions, beforeTime, afterTime, h.name(""))
		})
	})

	b.Add(transitions.ConvertToArray(h.Transitions().Name)...)
	return b.Statements()
}

// putTransition records beforeTime -> afterTime, failing if the input was
// already mapped to another output. That happens only when the key extractor
// recorded one element under two keys.
func putTransition(b *emit.Block, transitions emit.MapVariable, beforeTime, afterTime emit.Variable, owner string) {
	remapped := emit.And(
		transitions.Contains(beforeTime),
		emit.Negate(transitions.Get(beforeTime).Call("equals", afterTime)),
	)
	b.If(remapped, func(b *emit.Block) {
		b.Throw(owner + ": input element collapsed into two output elements")
	})
	b.Expr(transitions.Set(beforeTime, afterTime))
}

// ResultExpression implements Handler.
func (h *DistinctByKey) ResultExpression() emit.Expression {
	return emit.NewArray{Elem: emit.ObjectType, Items: []emit.Expression{h.peek.ResultExpression(), h.Transitions()}}
}
