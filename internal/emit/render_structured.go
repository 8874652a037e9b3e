package emit

import (
	"strconv"
	"strings"
)

// StructuredRenderer walks the node tree and lays it out with two-space
// indentation, one statement per line. Lambda bodies are laid out inline so
// that a lambda can be used as a single call argument.
type StructuredRenderer struct{}

// Name implements Renderer.
func (StructuredRenderer) Name() string { return RendererStructured }

// RenderExpression implements Renderer.
func (StructuredRenderer) RenderExpression(e Expression) string {
	p := &printer{}
	return p.expr(e)
}

// RenderStatements implements Renderer.
func (StructuredRenderer) RenderStatements(stmts []Statement) string {
	p := &printer{}
	p.statements(stmts)
	return p.out.String()
}

// printer holds layout state for one rendering pass.
type printer struct {
	out    strings.Builder
	indent int
	inline bool
}

func (p *printer) line(s string) {
	if p.inline {
		p.out.WriteString(s)
		p.out.WriteByte(' ')
		return
	}
	p.out.WriteString(strings.Repeat("  ", p.indent))
	p.out.WriteString(s)
	p.out.WriteByte('\n')
}

func (p *printer) nested(stmts []Statement) {
	p.indent++
	p.statements(stmts)
	p.indent--
}

func (p *printer) statements(stmts []Statement) {
	for _, s := range stmts {
		p.statement(s)
	}
}

func (p *printer) statement(s Statement) {
	switch n := s.(type) {
	case Declare:
		p.line(p.declaration(n) + ";")
	case ExprStatement:
		p.line(p.expr(n.X) + ";")
	case Assign:
		p.line(p.assignment(n) + ";")
	case For:
		p.line("for (" + p.declaration(n.Init) + "; " + p.expr(n.Cond) + "; " + p.assignment(n.Post) + ") {")
		p.nested(n.Body)
		p.line("}")
	case ForEach:
		p.line("for (final " + n.Var.Type.Variable + " " + n.Var.Name + " : " + p.expr(n.Over) + ") {")
		p.nested(n.Body)
		p.line("}")
	case If:
		p.line("if (" + p.expr(n.Cond) + ") {")
		p.nested(n.Then)
		if len(n.Else) > 0 {
			p.line("} else {")
			p.nested(n.Else)
		}
		p.line("}")
	case Break:
		p.line("break;")
	case Return:
		p.line("return " + p.expr(n.Value) + ";")
	case Throw:
		p.line("throw new java.lang.IllegalStateException(" + Quote(n.Message) + ");")
	case Scope:
		p.line("{")
		p.nested(n.Body)
		p.line("}")
	case RawStatement:
		for _, l := range strings.Split(strings.TrimRight(n.Code, "\n"), "\n") {
			p.line(l)
		}
	}
}

func (p *printer) declaration(d Declare) string {
	prefix := "final "
	if d.Mutable {
		prefix = ""
	}
	decl := prefix + d.Var.Type.Variable + " " + d.Var.Name
	if d.Init != nil {
		decl += " = " + p.expr(d.Init)
	}
	return decl
}

func (p *printer) assignment(a Assign) string {
	return p.expr(a.Target) + " = " + p.expr(a.Value)
}

func (p *printer) expr(e Expression) string {
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
		call := n.Method + "(" + p.list(n.Args) + ")"
		if n.Receiver == nil {
			return call
		}
		return p.operand(n.Receiver) + "." + call
	case Construct:
		return "new " + n.Type + "(" + p.list(n.Args) + ")"
	case NewArray:
		return "new " + n.Elem.arrayElement() + "[] {" + p.list(n.Items) + "}"
	case NewSizedArray:
		return "new " + n.Elem.arrayElement() + "[" + p.expr(n.Size) + "]"
	case Index:
		return p.operand(n.Array) + "[" + p.expr(n.Index) + "]"
	case Binary:
		return p.operand(n.Left) + " " + string(n.Op) + " " + p.operand(n.Right)
	case Not:
		return "!" + p.operand(n.Operand)
	case Lambda:
		return p.lambda(n)
	case Null:
		return "null"
	case IntLiteral:
		return strconv.FormatInt(n.Value, 10)
	}
	return ""
}

// operand renders e, parenthesized when it is a compound expression.
func (p *printer) operand(e Expression) string {
	switch e.(type) {
	case Binary, Not, Lambda:
		return "(" + p.expr(e) + ")"
	}
	return p.expr(e)
}

func (p *printer) list(items []Expression) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = p.expr(item)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) lambda(l Lambda) string {
	inner := &printer{inline: true}
	inner.statements(l.Body)
	return l.Param + " -> { " + inner.out.String() + "}"
}
