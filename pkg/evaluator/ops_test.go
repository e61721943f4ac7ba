package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/evaluator"
)

func TestApplyTypeMismatch(t *testing.T) {
	stray := &ast.Identifier{Name: "x"}
	one := evaluator.NewInt(1)
	tests := []struct {
		op      ast.BinaryOperator
		message string
	}{
		{ast.OpAdd, "cannot add a non-integer value"},
		{ast.OpSub, "cannot subtract a non-integer value"},
		{ast.OpMul, "cannot multiply a non-integer value"},
		{ast.OpDiv, "cannot divide a non-integer value"},
		{ast.OpGt, "cannot compare a non-integer value"},
		{ast.OpLt, "cannot compare a non-integer value"},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			for _, got := range []ast.Node{
				evaluator.Apply(tt.op, stray, one),
				evaluator.Apply(tt.op, one, stray),
			} {
				ev := expectError(t, got, diagnostics.EType)
				assert.Equal(t, tt.message, ev.Message)
			}
		})
	}
}

func TestApplyErrorBeatsTypeMismatch(t *testing.T) {
	boom := evaluator.NewError(diagnostics.EDivZero, "cannot divide by zero")
	assert.Same(t, boom, evaluator.Apply(ast.OpAdd, boom, &ast.Identifier{Name: "x"}))

	// Left is checked first.
	got := evaluator.Apply(ast.OpAdd, &ast.Identifier{Name: "x"}, boom)
	expectError(t, got, diagnostics.EType)
}

func TestApplyUnknownOperator(t *testing.T) {
	got := evaluator.Apply(ast.BinaryOperator("%"), evaluator.NewInt(1), evaluator.NewInt(2))
	expectError(t, got, diagnostics.EType)
}

func TestNegate(t *testing.T) {
	expectInt(t, evaluator.Negate(evaluator.NewInt(5)), -5)
	expectInt(t, evaluator.Negate(evaluator.NewInt(0)), 0)

	boom := evaluator.NewError(diagnostics.EUnbound, "Variable 'q' does not exist")
	assert.Same(t, boom, evaluator.Negate(boom))

	ev := expectError(t, evaluator.Negate(&ast.Identifier{Name: "q"}), diagnostics.EType)
	assert.Equal(t, "cannot negate a non-integer value", ev.Message)
}

func TestNewBool(t *testing.T) {
	assert.Equal(t, int32(1), evaluator.NewBool(true).Value)
	assert.Equal(t, int32(0), evaluator.NewBool(false).Value)
}

func TestSuggest(t *testing.T) {
	names := []string{"alpha", "beta", "gamma"}
	tests := []struct {
		name string
		want string
	}{
		{"alpah", "alpha"},
		{"bet", "beta"},
		{"gama", "gamma"},
		{"delta", ""},
		{"alpha", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluator.Suggest(tt.name, names))
		})
	}
	assert.Empty(t, evaluator.Suggest("x", nil))
}
