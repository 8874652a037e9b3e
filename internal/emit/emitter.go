package emit

import (
	"fmt"
	"strconv"

	"github.com/roach88/streamtrace/internal/ir"
)

// DefaultTimeExpression reads the instrumentation runtime's counter.
const DefaultTimeExpression = "time.get()"

// Renderer turns emitted nodes into target-language text.
type Renderer interface {
	// Name identifies the renderer in configuration.
	Name() string
	// RenderExpression renders a single expression.
	RenderExpression(e Expression) string
	// RenderStatements renders statements in order.
	RenderStatements(stmts []Statement) string
}

// Renderer names.
const (
	RendererStructured = "structured"
	RendererTemplate   = "template"
)

// RendererByName returns the renderer registered under name.
func RendererByName(name string) (Renderer, error) {
	switch name {
	case RendererStructured, "":
		return StructuredRenderer{}, nil
	case RendererTemplate:
		return TemplateRenderer{}, nil
	}
	return nil, &ir.GenerationError{
		Code:    ir.ErrCodeUnknownRenderer,
		Message: fmt.Sprintf("unknown renderer %q (want %q or %q)", name, RendererStructured, RendererTemplate),
	}
}

// Emitter bundles a renderer with the opaque expression that reads the
// runtime's time counter.
type Emitter struct {
	renderer Renderer
	time     Expression
}

// NewEmitter creates an emitter. A nil time expression falls back to
// DefaultTimeExpression.
func NewEmitter(r Renderer, timeExpr Expression) *Emitter {
	if r == nil {
		r = StructuredRenderer{}
	}
	if timeExpr == nil {
		timeExpr = Text{Code: DefaultTimeExpression}
	}
	return &Emitter{renderer: r, time: timeExpr}
}

// DefaultEmitter uses the structured renderer and the default time counter.
func DefaultEmitter() *Emitter {
	return NewEmitter(StructuredRenderer{}, nil)
}

// Renderer returns the configured renderer.
func (e *Emitter) Renderer() Renderer { return e.renderer }

// CurrentTime returns the expression reading the shared time counter.
func (e *Emitter) CurrentTime() Expression { return e.time }

// Lambda builds a single-parameter lambda. The callback receives the body
// block and the parameter as a variable.
func (e *Emitter) Lambda(param string, body func(b *Block, arg Variable)) Lambda {
	b := NewBlock()
	body(b, Variable{Name: param, Type: ObjectType})
	return Lambda{Param: param, Body: b.stmts}
}

// Expr renders an expression.
func (e *Emitter) Expr(x Expression) string {
	return e.renderer.RenderExpression(x)
}

// Code renders statements.
func (e *Emitter) Code(stmts []Statement) string {
	return e.renderer.RenderStatements(stmts)
}

// Name builds a collision-free identifier: <base><callNumber><suffix>.
func Name(base string, callNumber int, suffix string) string {
	return base + strconv.Itoa(callNumber) + suffix
}
