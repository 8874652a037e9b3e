package emit

import (
	"fmt"
	"strconv"
	"strings"
)

// LineSeparator terminates every statement produced by TemplateRenderer.
const LineSeparator = "\n"

// TemplateRenderer is the legacy renderer: each node is a literal template
// filled by string concatenation, statements separated manually. It keeps no
// layout state and does not indent.
//
// New code should use StructuredRenderer; this one is kept for older
// generated-code dialects.
type TemplateRenderer struct{}

// Name implements Renderer.
func (TemplateRenderer) Name() string { return RendererTemplate }

// RenderExpression implements Renderer.
func (r TemplateRenderer) RenderExpression(e Expression) string {
	switch n := e.(type) {
	case Text:
		return n.Code
	case Variable:
		return n.Name
	case ListVariable:
		return n.Name
	case MapVariable:
		return n.Name
	case Call:
		if n.Receiver == nil {
			return fmt.Sprintf("%s(%s)", n.Method, r.join(n.Args))
		}
		return fmt.Sprintf("%s.%s(%s)", r.wrap(n.Receiver), n.Method, r.join(n.Args))
	case Construct:
		return fmt.Sprintf("new %s(%s)", n.Type, r.join(n.Args))
	case NewArray:
		return fmt.Sprintf("new %s[] {%s}", n.Elem.arrayElement(), r.join(n.Items))
	case NewSizedArray:
		return fmt.Sprintf("new %s[%s]", n.Elem.arrayElement(), r.RenderExpression(n.Size))
	case Index:
		return fmt.Sprintf("%s[%s]", r.wrap(n.Array), r.RenderExpression(n.Index))
	case Binary:
		return fmt.Sprintf("%s %s %s", r.wrap(n.Left), n.Op, r.wrap(n.Right))
	case Not:
		return "!" + r.wrap(n.Operand)
	case Lambda:
		body := strings.ReplaceAll(r.RenderStatements(n.Body), LineSeparator, " ")
		return fmt.Sprintf("%s -> { %s}", n.Param, body)
	case Null:
		return "null"
	case IntLiteral:
		return strconv.FormatInt(n.Value, 10)
	}
	return ""
}

// RenderStatements implements Renderer.
func (r TemplateRenderer) RenderStatements(stmts []Statement) string {
	var out string
	for _, s := range stmts {
		out += r.statement(s)
	}
	return out
}

func (r TemplateRenderer) statement(s Statement) string {
	switch n := s.(type) {
	case Declare:
		return r.declaration(n) + ";" + LineSeparator
	case ExprStatement:
		return r.RenderExpression(n.X) + ";" + LineSeparator
	case Assign:
		return r.RenderExpression(n.Target) + " = " + r.RenderExpression(n.Value) + ";" + LineSeparator
	case For:
		return "for (" + r.declaration(n.Init) + "; " + r.RenderExpression(n.Cond) + "; " +
			r.RenderExpression(n.Post.Target) + " = " + r.RenderExpression(n.Post.Value) + ") {" + LineSeparator +
			r.RenderStatements(n.Body) +
			"}" + LineSeparator
	case ForEach:
		return "for (final " + n.Var.Type.Variable + " " + n.Var.Name + " : " + r.RenderExpression(n.Over) + ") {" + LineSeparator +
			r.RenderStatements(n.Body) +
			"}" + LineSeparator
	case If:
		out := "if (" + r.RenderExpression(n.Cond) + ") {" + LineSeparator + r.RenderStatements(n.Then)
		if len(n.Else) > 0 {
			out += "} else {" + LineSeparator + r.RenderStatements(n.Else)
		}
		return out + "}" + LineSeparator
	case Break:
		return "break;" + LineSeparator
	case Return:
		return "return " + r.RenderExpression(n.Value) + ";" + LineSeparator
	case Throw:
		return "throw new java.lang.IllegalStateException(" + Quote(n.Message) + ");" + LineSeparator
	case Scope:
		return "{" + LineSeparator + r.RenderStatements(n.Body) + "}" + LineSeparator
	case RawStatement:
		return strings.TrimRight(n.Code, LineSeparator) + LineSeparator
	}
	return ""
}

func (r TemplateRenderer) declaration(d Declare) string {
	out := d.Var.Type.Variable + " " + d.Var.Name
	if !d.Mutable {
		out = "final " + out
	}
	if d.Init != nil {
		out += " = " + r.RenderExpression(d.Init)
	}
	return out
}

func (r TemplateRenderer) wrap(e Expression) string {
	switch e.(type) {
	case Binary, Not, Lambda:
		return "(" + r.RenderExpression(e) + ")"
	}
	return r.RenderExpression(e)
}

func (r TemplateRenderer) join(items []Expression) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = r.RenderExpression(item)
	}
	return strings.Join(parts, ", ")
}
