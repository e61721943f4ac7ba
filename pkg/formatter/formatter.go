// Package formatter prints calc syntax trees back to canonical source and
// renders evaluation results for display.
package formatter

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/calc/pkg/ast"
)

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOperator]int{
	ast.OpGt: 1, ast.OpLt: 1,
	ast.OpAdd: 2, ast.OpSub: 2,
	ast.OpMul: 3, ast.OpDiv: 3,
}

func needsParens(child ast.Node, parentOp ast.BinaryOperator, isRight bool) bool {
	switch c := child.(type) {
	case *ast.Conditional:
		// An unparenthesized else-branch would swallow the rest of the line.
		return true
	case *ast.BinaryOp:
		childPrec := precedence[c.Op]
		parentPrec := precedence[parentOp]
		if childPrec < parentPrec {
			return true
		}
		// Left-associativity: same precedence on the right side needs parens
		return childPrec == parentPrec && isRight
	}
	return false
}

// Format prints a statement or expression as canonical single-line source.
// Parsing the output yields a tree equal to node, ignoring spans.
func Format(node ast.Node) string {
	var b strings.Builder
	formatNode(&b, node)
	return b.String()
}

// FormatLines formats each line of a script. Blank lines are kept blank;
// parse is called with the 1-based line number and trimmed text of every
// other line, and its error aborts formatting.
func FormatLines(lines []string, parse func(lineNo int, line string) (ast.Node, error)) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		node, err := parse(i+1, line)
		if err != nil {
			return nil, err
		}
		out[i] = Format(node)
	}
	return out, nil
}

func formatNode(b *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.IntValue:
		b.WriteString(strconv.FormatInt(int64(n.Value), 10))
	case *ast.ErrorValue:
		b.WriteString("<error: ")
		b.WriteString(n.Message)
		b.WriteString(">")
	case *ast.Identifier:
		b.WriteString(n.Name)
	case *ast.BinaryOp:
		formatOperand(b, n.Left, needsParens(n.Left, n.Op, false))
		b.WriteString(" ")
		b.WriteString(string(n.Op))
		b.WriteString(" ")
		formatOperand(b, n.Right, needsParens(n.Right, n.Op, true))
	case *ast.UnaryOp:
		b.WriteString(string(n.Op))
		_, binary := n.Operand.(*ast.BinaryOp)
		_, cond := n.Operand.(*ast.Conditional)
		formatOperand(b, n.Operand, binary || cond)
	case *ast.Conditional:
		b.WriteString("if ")
		formatNode(b, n.Cond)
		b.WriteString(" then ")
		formatNode(b, n.Then)
		b.WriteString(" else ")
		formatNode(b, n.Else)
	case *ast.Binding:
		b.WriteString("let ")
		b.WriteString(n.Name)
		b.WriteString(" = ")
		formatNode(b, n.Value)
	}
}

func formatOperand(b *strings.Builder, node ast.Node, parens bool) {
	if parens {
		b.WriteString("(")
	}
	formatNode(b, node)
	if parens {
		b.WriteString(")")
	}
}
