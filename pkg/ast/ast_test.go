package ast_test

import (
	"testing"

	"github.com/thomasrohde/calc/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.ErrorValue{Message: "boom"},
		&ast.IntValue{Value: 42},
		&ast.Identifier{Name: "x"},
		&ast.BinaryOp{Op: ast.OpAdd},
		&ast.UnaryOp{Op: ast.OpNeg},
		&ast.Conditional{},
		&ast.Binding{Name: "x"},
	}

	expected := []string{
		"ErrorValue", "IntValue", "Identifier", "BinaryOp",
		"UnaryOp", "Conditional", "Binding",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestIsValue(t *testing.T) {
	if !ast.IsValue(&ast.IntValue{}) || !ast.IsValue(&ast.ErrorValue{}) {
		t.Error("IntValue and ErrorValue should be values")
	}
	if ast.IsValue(&ast.Identifier{Name: "x"}) {
		t.Error("Identifier should not be a value")
	}
}

func TestJoin(t *testing.T) {
	got := ast.Join(ast.Span{StartCol: 5, EndCol: 7}, ast.Span{StartCol: 1, EndCol: 3})
	if got.StartCol != 1 || got.EndCol != 7 {
		t.Errorf("got %+v, want {1 7}", got)
	}
}

func TestWalkVisitsChildrenInOrder(t *testing.T) {
	// let y = if a then -b else c + 1
	tree := &ast.Binding{
		Name: "y",
		Value: &ast.Conditional{
			Cond: &ast.Identifier{Name: "a"},
			Then: &ast.UnaryOp{Op: ast.OpNeg, Operand: &ast.Identifier{Name: "b"}},
			Else: &ast.BinaryOp{Left: &ast.Identifier{Name: "c"}, Op: ast.OpAdd, Right: &ast.IntValue{Value: 1}},
		},
	}

	var names []string
	ast.Walk(tree, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})

	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := &ast.UnaryOp{Op: ast.OpNeg, Operand: &ast.Identifier{Name: "x"}}
	visited := 0
	ast.Walk(tree, func(n ast.Node) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("visited %d nodes, want 1", visited)
	}
}
