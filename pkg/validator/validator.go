// Package validator implements static checks over a parsed calc script.
//
// A script is a sequence of lines evaluated in one session. The validator
// reports problems that are certain before anything runs: names read before
// any line binds them, and division by a literal zero.
package validator

import (
	"fmt"
	"maps"
	"slices"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/evaluator"
)

// Line is one parsed, non-blank line of a script.
type Line struct {
	Number int // 1-based
	Source string
	Node   ast.Node
}

// Option configures validation.
type Option func(*validator)

// WithFile sets the file name reported in diagnostics.
func WithFile(name string) Option {
	return func(v *validator) {
		v.file = name
	}
}

// WithPredefined marks names as bound before the first line, for example by
// a prelude or an existing session.
func WithPredefined(names ...string) Option {
	return func(v *validator) {
		for _, n := range names {
			v.bound[n] = true
		}
	}
}

type validator struct {
	file  string
	bound map[string]bool
	diags []diagnostics.Diagnostic
}

// Validate checks lines in order and returns diagnostics in source order.
func Validate(lines []Line, opts ...Option) []diagnostics.Diagnostic {
	v := &validator{bound: make(map[string]bool)}
	for _, opt := range opts {
		opt(v)
	}
	for _, line := range lines {
		v.validateLine(line)
	}
	return v.diags
}

func (v *validator) addDiag(line Line, code, msg string, span ast.Span, hint string) {
	d := diagnostics.MakeDiag(code, msg, span.StartCol, span.EndCol, hint)
	v.diags = append(v.diags, d.At(v.file, line.Number, line.Source))
}

func (v *validator) validateLine(line Line) {
	if line.Node == nil {
		return
	}
	// The right-hand side of a binding is checked before the name is bound,
	// so `let x = x + 1` on a fresh name is reported.
	v.check(line, line.Node)
	if b, ok := line.Node.(*ast.Binding); ok {
		v.bound[b.Name] = true
	}
}

// check reports problems in n that are reached whenever n is evaluated. A
// conditional branch is only followed when the condition is a constant that
// selects it.
func (v *validator) check(line Line, n ast.Node) {
	switch node := n.(type) {
	case *ast.Identifier:
		v.checkIdentifier(line, node)
	case *ast.BinaryOp:
		if node.Op == ast.OpDiv && isLiteralZero(node.Right) {
			v.addDiag(line, diagnostics.EDivZero, "cannot divide by zero", node.Span, "")
		}
		v.check(line, node.Left)
		v.check(line, node.Right)
	case *ast.UnaryOp:
		v.check(line, node.Operand)
	case *ast.Binding:
		v.check(line, node.Value)
	case *ast.Conditional:
		v.check(line, node.Cond)
		c, ok := literalInt(node.Cond)
		if !ok {
			return
		}
		if evaluator.Truthiness(&ast.IntValue{Value: c}) {
			v.check(line, node.Then)
		} else {
			v.check(line, node.Else)
		}
	}
}

func (v *validator) checkIdentifier(line Line, id *ast.Identifier) {
	if v.bound[id.Name] {
		return
	}
	hint := ""
	if s := evaluator.Suggest(id.Name, v.boundNames()); s != "" {
		hint = fmt.Sprintf("did you mean '%s'?", s)
	}
	v.addDiag(line, diagnostics.EUnbound,
		fmt.Sprintf("Variable '%s' does not exist", id.Name), id.Span, hint)
}

func (v *validator) boundNames() []string {
	return slices.Sorted(maps.Keys(v.bound))
}

// isLiteralZero reports whether n is 0 written directly, possibly negated or
// parenthesized.
func isLiteralZero(n ast.Node) bool {
	c, ok := literalInt(n)
	return ok && c == 0
}

// literalInt returns the value of an integer literal, possibly negated.
func literalInt(n ast.Node) (int32, bool) {
	switch node := n.(type) {
	case *ast.IntValue:
		return node.Value, true
	case *ast.UnaryOp:
		c, ok := literalInt(node.Operand)
		return -c, ok
	}
	return 0, false
}
