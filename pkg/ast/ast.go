// Package ast defines the calc AST node types.
//
// The same tree type carries both syntax and runtime values: evaluation reduces
// every structural node to either an IntValue or an ErrorValue.
package ast

// Span represents a column range within a single source line.
// Columns are 1-based; EndCol is exclusive.
type Span struct {
	StartCol int `json:"startCol"`
	EndCol   int `json:"endCol"`
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	out := a
	if b.StartCol < out.StartCol {
		out.StartCol = b.StartCol
	}
	if b.EndCol > out.EndCol {
		out.EndCol = b.EndCol
	}
	return out
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
	node() // sealed marker
}

// BinaryOperator represents a binary operator.
type BinaryOperator string

const (
	OpAdd BinaryOperator = "+"
	OpSub BinaryOperator = "-"
	OpMul BinaryOperator = "*"
	OpDiv BinaryOperator = "/"
	OpGt  BinaryOperator = ">"
	OpLt  BinaryOperator = "<"
)

// UnaryOperator represents a unary operator.
type UnaryOperator string

const (
	OpNeg UnaryOperator = "-"
)

// --- Values ---

// ErrorValue is a runtime failure. Once produced it propagates unchanged
// through every enclosing expression.
type ErrorValue struct {
	Span    Span
	Code    string
	Message string
	Hint    string
}

func (n *ErrorValue) Kind() string   { return "ErrorValue" }
func (n *ErrorValue) NodeSpan() Span { return n.Span }
func (n *ErrorValue) node()          {}

func (n *ErrorValue) Error() string { return n.Message }

type IntValue struct {
	Span  Span
	Value int32
}

func (n *IntValue) Kind() string   { return "IntValue" }
func (n *IntValue) NodeSpan() Span { return n.Span }
func (n *IntValue) node()          {}

// --- Expressions ---

type Identifier struct {
	Span Span
	Name string
}

func (n *Identifier) Kind() string   { return "Identifier" }
func (n *Identifier) NodeSpan() Span { return n.Span }
func (n *Identifier) node()          {}

type BinaryOp struct {
	Span  Span
	Left  Node
	Op    BinaryOperator
	Right Node
}

func (n *BinaryOp) Kind() string   { return "BinaryOp" }
func (n *BinaryOp) NodeSpan() Span { return n.Span }
func (n *BinaryOp) node()          {}

type UnaryOp struct {
	Span    Span
	Op      UnaryOperator
	Operand Node
}

func (n *UnaryOp) Kind() string   { return "UnaryOp" }
func (n *UnaryOp) NodeSpan() Span { return n.Span }
func (n *UnaryOp) node()          {}

type Conditional struct {
	Span Span
	Cond Node
	Then Node
	Else Node
}

func (n *Conditional) Kind() string   { return "Conditional" }
func (n *Conditional) NodeSpan() Span { return n.Span }
func (n *Conditional) node()          {}

// --- Statements ---

// Binding is a `let name = value` statement.
type Binding struct {
	Span  Span
	Name  string
	Value Node
}

func (n *Binding) Kind() string   { return "Binding" }
func (n *Binding) NodeSpan() Span { return n.Span }
func (n *Binding) node()          {}

// IsValue reports whether n is a fully reduced node (IntValue or ErrorValue).
func IsValue(n Node) bool {
	switch n.(type) {
	case *IntValue, *ErrorValue:
		return true
	default:
		return false
	}
}

// Walk calls fn for n and then for each of its children in source order.
// Returning false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *BinaryOp:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *UnaryOp:
		Walk(v.Operand, fn)
	case *Conditional:
		Walk(v.Cond, fn)
		Walk(v.Then, fn)
		Walk(v.Else, fn)
	case *Binding:
		Walk(v.Value, fn)
	}
}
