package emit

// Node is implemented by every emitted construct.
type Node interface {
	emitNode()
}

// Expression is a node that produces a value.
//
// This is a sealed interface - only types in this package implement it.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node executed for its effect.
//
// This is a sealed interface - only types in this package implement it.
type Statement interface {
	Node
	statementNode()
}

// Text is verbatim expression code, such as a user-supplied lambda.
type Text struct {
	Code string
}

// Variable references a named value of a known type.
type Variable struct {
	Name string
	Type Type
}

// Call invokes Method on Receiver. A nil Receiver calls an unqualified method.
type Call struct {
	Receiver Expression
	Method   string
	Args     []Expression
}

// Construct instantiates a class: new Type(Args).
type Construct struct {
	Type string
	Args []Expression
}

// NewArray creates an array from its elements: new Elem[] {Items}.
type NewArray struct {
	Elem  Type
	Items []Expression
}

// NewSizedArray creates a zero-filled array: new Elem[Size].
type NewSizedArray struct {
	Elem Type
	Size Expression
}

// Index reads an array element: Array[Index].
type Index struct {
	Array Expression
	Index Expression
}

// Operator is a binary operator.
type Operator string

const (
	OpAnd  Operator = "&&"
	OpLess Operator = "<"
	OpPlus Operator = "+"
	// OpSame compares references by identity, never by equality.
	OpSame Operator = "=="
)

// Binary applies Op to two operands.
type Binary struct {
	Op    Operator
	Left  Expression
	Right Expression
}

// Not negates a boolean expression.
type Not struct {
	Operand Expression
}

// Lambda is a single-parameter function literal with a statement body.
type Lambda struct {
	Param string
	Body  []Statement
}

// Null is the null reference.
type Null struct{}

// IntLiteral is an integer constant.
type IntLiteral struct {
	Value int64
}

// Declare introduces a variable. A nil Init declares without initializing;
// the variable must then be assigned exactly once.
type Declare struct {
	Var     Variable
	Init    Expression
	Mutable bool
}

// ExprStatement evaluates an expression for its side effect.
type ExprStatement struct {
	X Expression
}

// Assign stores Value into Target (a variable or array element).
type Assign struct {
	Target Expression
	Value  Expression
}

// For is a counted loop.
type For struct {
	Init Declare
	Cond Expression
	Post Assign
	Body []Statement
}

// ForEach iterates over the elements of Over, binding each to Var.
type ForEach struct {
	Var  Variable
	Over Expression
	Body []Statement
}

// If is a conditional branch. Else may be empty.
type If struct {
	Cond Expression
	Then []Statement
	Else []Statement
}

// Break exits the innermost loop.
type Break struct{}

// Return returns Value from the enclosing lambda.
type Return struct {
	Value Expression
}

// Throw aborts execution with an invariant violation carrying Message.
type Throw struct {
	Message string
}

// Scope is a nested block; declarations inside it are not visible outside.
type Scope struct {
	Body []Statement
}

// RawStatement is verbatim statement code, kept for legacy constructs that
// have no node form (such as local class declarations).
type RawStatement struct {
	Code string
}

// Interface markers.
func (Text) emitNode()          {}
func (Variable) emitNode()      {}
func (Call) emitNode()          {}
func (Construct) emitNode()     {}
func (NewArray) emitNode()      {}
func (NewSizedArray) emitNode() {}
func (Index) emitNode()         {}
func (Binary) emitNode()        {}
func (Not) emitNode()           {}
func (Lambda) emitNode()        {}
func (Null) emitNode()          {}
func (IntLiteral) emitNode()    {}
func (Declare) emitNode()       {}
func (ExprStatement) emitNode() {}
func (Assign) emitNode()        {}
func (For) emitNode()           {}
func (ForEach) emitNode()       {}
func (If) emitNode()            {}
func (Break) emitNode()         {}
func (Return) emitNode()        {}
func (Throw) emitNode()         {}
func (Scope) emitNode()         {}
func (RawStatement) emitNode()  {}

func (Text) expressionNode()          {}
func (Variable) expressionNode()      {}
func (Call) expressionNode()          {}
func (Construct) expressionNode()     {}
func (NewArray) expressionNode()      {}
func (NewSizedArray) expressionNode() {}
func (Index) expressionNode()         {}
func (Binary) expressionNode()        {}
func (Not) expressionNode()           {}
func (Lambda) expressionNode()        {}
func (Null) expressionNode()          {}
func (IntLiteral) expressionNode()    {}

func (Declare) statementNode()       {}
func (ExprStatement) statementNode() {}
func (Assign) statementNode()        {}
func (For) statementNode()           {}
func (ForEach) statementNode()       {}
func (If) statementNode()            {}
func (Break) statementNode()         {}
func (Return) statementNode()        {}
func (Throw) statementNode()         {}
func (Scope) statementNode()         {}
func (RawStatement) statementNode()  {}

// Call invokes a method on the variable.
func (v Variable) Call(method string, args ...Expression) Call {
	return Call{Receiver: v, Method: method, Args: args}
}

// Call invokes a method on the result of this call.
func (c Call) Call(method string, args ...Expression) Call {
	return Call{Receiver: c, Method: method, Args: args}
}

// And is the short-circuit conjunction of l and r.
func And(l, r Expression) Binary { return Binary{Op: OpAnd, Left: l, Right: r} }

// Less is l < r.
func Less(l, r Expression) Binary { return Binary{Op: OpLess, Left: l, Right: r} }

// Plus is l + r.
func Plus(l, r Expression) Binary { return Binary{Op: OpPlus, Left: l, Right: r} }

// Same compares l and r by reference identity.
func Same(l, r Expression) Binary { return Binary{Op: OpSame, Left: l, Right: r} }

// Negate is !x.
func Negate(x Expression) Not { return Not{Operand: x} }

// Int is an integer literal.
func Int(v int64) IntLiteral { return IntLiteral{Value: v} }
