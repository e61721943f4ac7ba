package evaluator

import (
	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
)

var opVerbs = map[ast.BinaryOperator]string{
	ast.OpAdd: "add",
	ast.OpSub: "subtract",
	ast.OpMul: "multiply",
	ast.OpDiv: "divide",
	ast.OpGt:  "compare",
	ast.OpLt:  "compare",
}

// operand checks one side of a binary operation. An error propagates as is;
// any other non-integer becomes a type error.
func operand(op ast.BinaryOperator, n ast.Node) (*ast.IntValue, ast.Node) {
	switch v := n.(type) {
	case *ast.IntValue:
		return v, nil
	case *ast.ErrorValue:
		return nil, v
	default:
		return nil, NewError(diagnostics.EType, "cannot %s a non-integer value", verb(op))
	}
}

func verb(op ast.BinaryOperator) string {
	if v, ok := opVerbs[op]; ok {
		return v
	}
	return "apply '" + string(op) + "' to"
}

// Apply applies a binary operator to two evaluated operands. The left operand
// is checked first, so its error wins when both sides fail.
//
// Arithmetic is 32-bit two's complement: results wrap on overflow and
// division truncates toward zero.
func Apply(op ast.BinaryOperator, left, right ast.Node) ast.Node {
	l, fail := operand(op, left)
	if fail != nil {
		return fail
	}
	r, fail := operand(op, right)
	if fail != nil {
		return fail
	}

	switch op {
	case ast.OpAdd:
		return NewInt(l.Value + r.Value)
	case ast.OpSub:
		return NewInt(l.Value - r.Value)
	case ast.OpMul:
		return NewInt(l.Value * r.Value)
	case ast.OpDiv:
		if r.Value == 0 {
			return NewError(diagnostics.EDivZero, "cannot divide by zero")
		}
		return NewInt(l.Value / r.Value)
	case ast.OpGt:
		return NewBool(l.Value > r.Value)
	case ast.OpLt:
		return NewBool(l.Value < r.Value)
	default:
		return NewError(diagnostics.EType, "unknown operator '%s'", op)
	}
}

// Negate applies unary minus to an evaluated operand.
func Negate(v ast.Node) ast.Node {
	switch n := v.(type) {
	case *ast.IntValue:
		return NewInt(-n.Value)
	case *ast.ErrorValue:
		return n
	default:
		return NewError(diagnostics.EType, "cannot negate a non-integer value")
	}
}
