package emit

import "slices"

// Block sequences statements in order. Nested constructs receive their own
// Block through a callback, so declarations stay scoped to where they were
// made.
type Block struct {
	stmts []Statement
}

// NewBlock creates an empty block.
func NewBlock() *Block {
	return &Block{}
}

// Statements returns a copy of the statements added so far.
func (b *Block) Statements() []Statement {
	return slices.Clone(b.stmts)
}

// Len returns the number of top-level statements.
func (b *Block) Len() int {
	return len(b.stmts)
}

// Add appends statements verbatim.
func (b *Block) Add(stmts ...Statement) {
	b.stmts = append(b.stmts, stmts...)
}

// Expr appends an expression statement.
func (b *Block) Expr(e Expression) {
	b.Add(ExprStatement{X: e})
}

// Declare appends a declaration and returns the declared variable.
func (b *Block) Declare(v Variable, init Expression, mutable bool) Variable {
	b.Add(Declare{Var: v, Init: init, Mutable: mutable})
	return v
}

// Assign appends target = value.
func (b *Block) Assign(target, value Expression) {
	b.Add(Assign{Target: target, Value: value})
}

// CountedLoop appends for (int counter = 0; counter < bound; counter++).
func (b *Block) CountedLoop(counter string, bound Expression, body func(b *Block, i Variable)) {
	i := Variable{Name: counter, Type: IntType}
	inner := NewBlock()
	body(inner, i)
	b.Add(For{
		Init: Declare{Var: i, Init: Int(0), Mutable: true},
		Cond: Less(i, bound),
		Post: Assign{Target: i, Value: Plus(i, Int(1))},
		Body: inner.stmts,
	})
}

// ForEach appends a loop binding each element of over to v.
func (b *Block) ForEach(v Variable, over Expression, body func(b *Block, item Variable)) {
	inner := NewBlock()
	body(inner, v)
	b.Add(ForEach{Var: v, Over: over, Body: inner.stmts})
}

// If appends a branch without else.
func (b *Block) If(cond Expression, then func(b *Block)) {
	inner := NewBlock()
	then(inner)
	b.Add(If{Cond: cond, Then: inner.stmts})
}

// IfElse appends a two-way branch.
func (b *Block) IfElse(cond Expression, then, otherwise func(b *Block)) {
	thenBlock, elseBlock := NewBlock(), NewBlock()
	then(thenBlock)
	otherwise(elseBlock)
	b.Add(If{Cond: cond, Then: thenBlock.stmts, Else: elseBlock.stmts})
}

// Break appends an early loop exit.
func (b *Block) Break() {
	b.Add(Break{})
}

// Return appends return e.
func (b *Block) Return(e Expression) {
	b.Add(Return{Value: e})
}

// Throw appends an invariant-violation throw.
func (b *Block) Throw(message string) {
	b.Add(Throw{Message: message})
}

// Scope appends a nested block.
func (b *Block) Scope(body func(b *Block)) {
	inner := NewBlock()
	body(inner)
	b.Add(Scope{Body: inner.stmts})
}

// Append adds the statements of other in order.
func (b *Block) Append(other *Block) {
	if other == nil {
		return
	}
	b.Add(other.stmts...)
}
