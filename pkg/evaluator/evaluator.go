package evaluator

import (
	"fmt"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
)

// Evaluate reduces node to an *ast.IntValue or an *ast.ErrorValue, reading and
// (for bindings) writing env. Values evaluate to themselves.
func Evaluate(node ast.Node, env *Env) ast.Node {
	switch n := node.(type) {
	case *ast.IntValue:
		return n
	case *ast.ErrorValue:
		return n
	case *ast.Identifier:
		return evalIdentifier(n, env)
	case *ast.BinaryOp:
		left := Evaluate(n.Left, env)
		right := Evaluate(n.Right, env)
		return located(Apply(n.Op, left, right), n.Span, left, right)
	case *ast.UnaryOp:
		operand := Evaluate(n.Operand, env)
		return located(Negate(operand), n.Span, operand)
	case *ast.Conditional:
		return evalConditional(n, env)
	case *ast.Binding:
		return evalBinding(n, env)
	case nil:
		return NewError(diagnostics.EType, "cannot evaluate an empty expression")
	default:
		return NewError(diagnostics.EType, "cannot evaluate node of kind %s", node.Kind())
	}
}

func evalIdentifier(n *ast.Identifier, env *Env) ast.Node {
	if v, ok := env.Get(n.Name); ok {
		return &ast.IntValue{Span: n.Span, Value: v}
	}
	ev := NewError(diagnostics.EUnbound, "Variable '%s' does not exist", n.Name)
	ev.Span = n.Span
	if s := Suggest(n.Name, env.Names()); s != "" {
		ev.Hint = fmt.Sprintf("did you mean '%s'?", s)
	}
	return ev
}

func evalConditional(n *ast.Conditional, env *Env) ast.Node {
	switch c := Evaluate(n.Cond, env).(type) {
	case *ast.ErrorValue:
		return c
	case *ast.IntValue:
		if Truthiness(c) {
			return Evaluate(n.Then, env)
		}
		return Evaluate(n.Else, env)
	default:
		ev := NewError(diagnostics.ECond, "case value cannot be tested in an if statement")
		ev.Span = n.Cond.NodeSpan()
		return ev
	}
}

func evalBinding(n *ast.Binding, env *Env) ast.Node {
	switch v := Evaluate(n.Value, env).(type) {
	case *ast.ErrorValue:
		return v
	case *ast.IntValue:
		env.Set(n.Name, v.Value)
		return v
	default:
		return NewError(diagnostics.EType, "cannot bind a non-integer value to '%s'", n.Name)
	}
}

// located gives a freshly created error the span of the node that raised it.
// Errors propagated from an operand keep the span of their origin.
func located(result ast.Node, span ast.Span, operands ...ast.Node) ast.Node {
	ev, ok := result.(*ast.ErrorValue)
	if !ok {
		return result
	}
	for _, o := range operands {
		if o == result {
			return result
		}
	}
	ev.Span = span
	return ev
}

// maxSuggestDistance bounds how different a suggestion may be from the
// unbound name.
const maxSuggestDistance = 2

// Suggest returns the candidate closest to name by edit distance, or "" when
// none is within maxSuggestDistance. Ties go to the earliest candidate.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	src := []rune(name)
	for _, c := range candidates {
		if c == name {
			continue
		}
		d := levenshtein.DistanceForStrings(src, []rune(c), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
