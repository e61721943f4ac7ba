// Package evaluator implements the calc tree-walking evaluator.
//
// Evaluation reduces a node to an *ast.IntValue or an *ast.ErrorValue. User
// level failures are values, never panics or Go errors.
package evaluator

import (
	"fmt"

	"github.com/thomasrohde/calc/pkg/ast"
)

// NewInt creates an integer value.
func NewInt(n int32) *ast.IntValue {
	return &ast.IntValue{Value: n}
}

// NewBool creates the integer encoding of a comparison result: 1 or 0.
func NewBool(b bool) *ast.IntValue {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// NewError creates an error value with the given code.
func NewError(code, format string, args ...any) *ast.ErrorValue {
	return &ast.ErrorValue{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError returns n as an error value, if it is one.
func AsError(n ast.Node) (*ast.ErrorValue, bool) {
	ev, ok := n.(*ast.ErrorValue)
	return ev, ok
}

// Truthiness reports whether an integer condition selects the then-branch.
func Truthiness(v *ast.IntValue) bool {
	return v.Value != 0
}
