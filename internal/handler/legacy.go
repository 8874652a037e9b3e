package handler

import (
	"fmt"

	"github.com/roach88/streamtrace/internal/emit"
	"github.com/roach88/streamtrace/internal/ir"
)

// IdentityWrapperDistinct is the older formulation of DistinctByKey kept for
// generated-code dialects that predate the identity scan.
//
// Each input element is boxed in a generated wrapper class whose equality is
// reference identity of the wrapped object. A map from wrapper to key replaces
// the scan: an output value is looked up through a fresh wrapper. The
// correlation contract is the same as DistinctByKey.
type IdentityWrapperDistinct struct {
	emitter    *emit.Emitter
	callNumber int
	call       ir.PipelineCall

	peek         *PeekTracer
	extractor    ir.CallArgument
	extractorVar emit.Variable
	wrapperClass emit.Type
	wrappers     emit.ListVariable
	utilityMap   emit.MapVariable
	after        emit.MapVariable
}

// NewIdentityWrapperDistinct creates a legacy handler. A call without
// arguments is a precondition violation.
func NewIdentityWrapperDistinct(callNumber int, call ir.PipelineCall, e *emit.Emitter) (*IdentityWrapperDistinct, error) {
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
	wrapper := emit.ClassType(emit.Name("Wrapper", callNumber, ""))
	return &IdentityWrapperDistinct{
		emitter:      e,
		callNumber:   callNumber,
		call:         call,
		peek:         NewPeekTracer(callNumber, base, call.TypeBefore(), call.TypeAfter(), e),
		extractor:    args[0],
		extractorVar: emit.Variable{Name: emit.Name("keyExtractor", callNumber, ""), Type: emit.ClassType(args[0].Type)},
		wrapperClass: wrapper,
		wrappers:     emit.NewList(wrapper, emit.Name(base, callNumber, "Wrappers")),
		utilityMap:   emit.NewMap(wrapper, emit.ObjectType, emit.Name(base, callNumber, "UtilityMap")),
		after:        emit.NewLinkedMap(timeType, emit.ObjectType, emit.Name(base, callNumber, "After")),
	}, nil
}

func (h *IdentityWrapperDistinct) name(suffix string) string {
	return emit.Name(DistinctCallName, h.callNumber, suffix)
}

func (h *IdentityWrapperDistinct) classDeclaration() emit.Statement {
	w := h.wrapperClass.Variable
	return emit.RawStatement{Code: fmt.Sprintf(`class %[1]s {
  private final java.lang.Object obj;
  private final int time;
  %[1]s(java.lang.Object obj, int time) { this.obj = obj; this.time = time; }
  public int time() { return time; }
  @java.lang.Override public boolean equals(java.lang.Object other) { return other instanceof %[1]s && ((%[1]s) other).obj == obj; }
  @java.lang.Override public int hashCode() { return java.lang.System.identityHashCode(obj); }
}`, w)}
}

// AdditionalCallsBefore implements Handler.
func (h *IdentityWrapperDistinct) AdditionalCallsBefore() []ir.PipelineCall {
	return h.peek.AdditionalCallsBefore()
}

// AdditionalCallsAfter implements Handler.
func (h *IdentityWrapperDistinct) AdditionalCallsAfter() []ir.PipelineCall {
	record := h.emitter.Lambda("x", func(b *emit.Block, x emit.Variable) {
		b.Expr(h.after.Set(h.emitter.CurrentTime(), x))
	})
	calls := []ir.PipelineCall{peekCall(h.call.TypeAfter(), h.emitter.Expr(record))}
	return append(calls, h.peek.AdditionalCallsAfter()...)
}

// AdditionalVariables implements Handler. The wrapper class declaration
// comes first so the containers can refer to it.
func (h *IdentityWrapperDistinct) AdditionalVariables() []emit.Statement {
	vars := []emit.Statement{
		h.classDeclaration(),
		emit.Declare{Var: h.extractorVar, Init: emit.Text{Code: h.extractor.Text}},
		h.wrappers.DefaultDeclaration(),
		h.utilityMap.DefaultDeclaration(),
		h.after.DefaultDeclaration(),
	}
	return append(vars, h.peek.AdditionalVariables()...)
}

// TransformCall implements Handler.
func (h *IdentityWrapperDistinct) TransformCall(call ir.PipelineCall) ir.PipelineCall {
	e := h.emitter
	extractor := e.Lambda("x", func(b *emit.Block, x emit.Variable) {
		recorder := e.Lambda("t", func(b *emit.Block, t emit.Variable) {
			w := b.Declare(emit.Variable{Name: emit.Name("wrapper", h.callNumber, ""), Type: h.wrapperClass},
				emit.Construct{Type: h.wrapperClass.Variable, Args: []emit.Expression{x, e.CurrentTime()}}, false)
			b.Expr(h.wrappers.Add(w))
			b.Expr(h.utilityMap.Set(w, t))
			b.Return(t)
		})
		b.Return(h.extractorVar.Call("andThen", recorder).Call("apply", x))
	})
	return call.WithArguments([]ir.CallArgument{{Type: h.extractor.Type, Text: e.Expr(extractor)}})
}

// Transitions is the variable holding the exported transitions.
func (h *IdentityWrapperDistinct) Transitions() emit.Variable {
	return emit.Variable{Name: h.name("Transitions"), Type: emit.ArrayOf(emit.ObjectType)}
}

// PrepareResult implements Handler.
func (h *IdentityWrapperDistinct) PrepareResult() []emit.Statement {
	b := emit.NewBlock()
	b.Add(h.peek.PrepareResult()...)

	keys2Times := emit.NewMap(emit.ObjectType, emit.ListOf(timeType), h.name("Keys2Times"))
	transitions := emit.NewLinkedMap(timeType, timeType, h.name("TransitionsMap"))
	b.Add(keys2Times.DefaultDeclaration(), transitions.DefaultDeclaration())

	wrapper := emit.Variable{Name: h.name("Wrapper"), Type: h.wrapperClass}
	b.ForEach(wrapper, h.wrappers, func(b *emit.Block, w emit.Variable) {
		newTimes := h.emitter.Lambda(h.name("NewKey"), func(b *emit.Block, _ emit.Variable) {
			b.Return(emit.Construct{Type: "java.util.ArrayList<>"})
		})
		b.Expr(keys2Times.ComputeIfAbsent(h.utilityMap.Get(w), newTimes).Call("add", w.Call("time")))
	})

	afterTime := emit.Variable{Name: h.name("AfterTime"), Type: timeType}
	b.ForEach(afterTime, h.after.Keys(), func(b *emit.Block, afterTime emit.Variable) {
		lookup := b.Declare(emit.Variable{Name: h.name("Lookup"), Type: h.wrapperClass},
			emit.Construct{Type: h.wrapperClass.Variable, Args: []emit.Expression{h.after.Get(afterTime), emit.Int(-1)}}, false)
		b.If(emit.Negate(h.utilityMap.Contains(lookup)), func(b *emit.Block) {
			b.Throw(h.name("") + ": output element has no identical input element")
		})
		beforeTime := emit.Variable{Name: h.name("BeforeTime"), Type: timeType}
		b.ForEach(beforeTime, keys2Times.Get(h.utilityMap.Get(lookup)), func(b *emit.Block, beforeTime emit.Variable) {
			putTransition(b, transitions, beforeTime, afterTime, h.name(""))
		})
	})

	b.Add(transitions.ConvertToArray(h.Transitions().Name)...)
	return b.Statements()
}

// ResultExpression implements Handler.
func (h *IdentityWrapperDistinct) ResultExpression() emit.Expression {
	return emit.NewArray{Elem: emit.ObjectType, Items: []emit.Expression{h.peek.ResultExpression(), h.Transitions()}}
}
