package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/thomasrohde/calc/pkg/ast"
)

// Dump writes node as an indented tree, one node per line with its columns.
func Dump(w io.Writer, node ast.Node) {
	dump(w, node, 0)
}

func dump(w io.Writer, node ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if node == nil {
		fmt.Fprintf(w, "%s<nil>\n", indent)
		return
	}
	sp := node.NodeSpan()
	at := fmt.Sprintf("[%d:%d]", sp.StartCol, sp.EndCol)
	switch n := node.(type) {
	case *ast.IntValue:
		fmt.Fprintf(w, "%sIntValue %d %s\n", indent, n.Value, at)
	case *ast.ErrorValue:
		fmt.Fprintf(w, "%sErrorValue %s %q %s\n", indent, n.Code, n.Message, at)
	case *ast.Identifier:
		fmt.Fprintf(w, "%sIdentifier %s %s\n", indent, n.Name, at)
	case *ast.BinaryOp:
		fmt.Fprintf(w, "%sBinaryOp %s %s\n", indent, n.Op, at)
		dump(w, n.Left, depth+1)
		dump(w, n.Right, depth+1)
	case *ast.UnaryOp:
		fmt.Fprintf(w, "%sUnaryOp %s %s\n", indent, n.Op, at)
		dump(w, n.Operand, depth+1)
	case *ast.Conditional:
		fmt.Fprintf(w, "%sConditional %s\n", indent, at)
		dump(w, n.Cond, depth+1)
		dump(w, n.Then, depth+1)
		dump(w, n.Else, depth+1)
	case *ast.Binding:
		fmt.Fprintf(w, "%sBinding %s %s\n", indent, n.Name, at)
		dump(w, n.Value, depth+1)
	default:
		fmt.Fprintf(w, "%s%s %s\n", indent, node.Kind(), at)
	}
}
