package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/lexer"
	"github.com/thomasrohde/calc/pkg/parser"
)

// helper: lex and parse source, assert success and full consumption
func mustParse(t *testing.T, source string) ast.Node {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	require.NoError(t, err, "lex %q", source)
	node, err := parser.ParseLine(tokens)
	require.NoError(t, err, "parse %q", source)
	require.NotNil(t, node)
	return node
}

// helper: lex and parse source, assert a syntax error and return it
func mustFail(t *testing.T, source string) *parser.SyntaxError {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	require.NoError(t, err, "lex %q", source)
	_, err = parser.ParseLine(tokens)
	require.Error(t, err, "expected %q to fail", source)
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se), "expected *parser.SyntaxError, got %T", err)
	return se
}

// sexpr renders a tree in prefix form, which makes precedence and
// associativity easy to assert.
func sexpr(n ast.Node) string {
	switch v := n.(type) {
	case *ast.IntValue:
		return fmt.Sprint(v.Value)
	case *ast.Identifier:
		return v.Name
	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", v.Op, sexpr(v.Left), sexpr(v.Right))
	case *ast.UnaryOp:
		return fmt.Sprintf("(neg %s)", sexpr(v.Operand))
	case *ast.Conditional:
		return fmt.Sprintf("(if %s %s %s)", sexpr(v.Cond), sexpr(v.Then), sexpr(v.Else))
	case *ast.Binding:
		return fmt.Sprintf("(let %s %s)", v.Name, sexpr(v.Value))
	default:
		return fmt.Sprintf("<%T>", n)
	}
}

var ignoreSpans = cmpopts.IgnoreTypes(ast.Span{})

// ---- 1. Literals and identifiers ----

func TestIntLiteral(t *testing.T) {
	for _, tt := range []struct {
		source string
		want   int32
	}{
		{"0", 0},
		{"42", 42},
		{"2147483647", 2147483647},
	} {
		t.Run(tt.source, func(t *testing.T) {
			node := mustParse(t, tt.source)
			lit, ok := node.(*ast.IntValue)
			require.True(t, ok, "expected *ast.IntValue, got %T", node)
			assert.Equal(t, tt.want, lit.Value)
		})
	}
}

func TestIdentifier(t *testing.T) {
	node := mustParse(t, "count")
	id, ok := node.(*ast.Identifier)
	require.True(t, ok, "expected *ast.Identifier, got %T", node)
	assert.Equal(t, "count", id.Name)
	assert.Equal(t, ast.Span{StartCol: 1, EndCol: 6}, id.Span)
}

// ---- 2. Precedence and associativity ----

func TestPrecedence(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"2 + 3 * 4", "(+ 2 (* 3 4))"},
		{"(2 + 3) * 4", "(* (+ 2 3) 4)"},
		{"2 * 3 + 4", "(+ (* 2 3) 4)"},
		{"10 - 3 - 2", "(- (- 10 3) 2)"},
		{"8 / 4 / 2", "(/ (/ 8 4) 2)"},
		{"1 + 2 > 2", "(> (+ 1 2) 2)"},
		{"1 < 2 < 3", "(< (< 1 2) 3)"},
		{"a > b + c * d", "(> a (+ b (* c d)))"},
		{"-x * 2", "(* (neg x) 2)"},
		{"--1", "(neg (neg 1))"},
		{"2 - -1", "(- 2 (neg 1))"},
		{"-(1 + 2)", "(neg (+ 1 2))"},
		{"((7))", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, sexpr(mustParse(t, tt.source)))
		})
	}
}

// ---- 3. Conditionals ----

func TestConditional(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"if 0 then 1 else 2", "(if 0 1 2)"},
		{"if x > 1 then x else -x", "(if (> x 1) x (neg x))"},
		{"if a then b else c + 1", "(if a b (+ c 1))"},
		{"1 + if a then 2 else 3", "(+ 1 (if a 2 3))"},
		{"(if a then 2 else 3) * 4", "(* (if a 2 3) 4)"},
		{"if if a then b else c then 1 else 2", "(if (if a b c) 1 2)"},
		{"if a then if b then 1 else 2 else 3", "(if a (if b 1 2) 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, sexpr(mustParse(t, tt.source)))
		})
	}
}

func TestConditionalStructure(t *testing.T) {
	got := mustParse(t, "if x then 1 else y")
	want := &ast.Conditional{
		Cond: &ast.Identifier{Name: "x"},
		Then: &ast.IntValue{Value: 1},
		Else: &ast.Identifier{Name: "y"},
	}
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Errorf("conditional mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ast.Span{StartCol: 1, EndCol: 19}, got.NodeSpan())
}

// ---- 4. Bindings ----

func TestBinding(t *testing.T) {
	got := mustParse(t, "let total = a + 2 * b")
	want := &ast.Binding{
		Name: "total",
		Value: &ast.BinaryOp{
			Left: &ast.Identifier{Name: "a"},
			Op:   ast.OpAdd,
			Right: &ast.BinaryOp{
				Left:  &ast.IntValue{Value: 2},
				Op:    ast.OpMul,
				Right: &ast.Identifier{Name: "b"},
			},
		},
	}
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Errorf("binding mismatch (-want +got):\n%s", diff)
	}
}

func TestBindingRejectsTrailingTokens(t *testing.T) {
	se := mustFail(t, "let x = 1 2")
	assert.Equal(t, parser.ErrInvalidSyntax, se.Kind)
	assert.Equal(t, 11, se.Diag.Col)
}

func TestLetOnlyAtStatementStart(t *testing.T) {
	se := mustFail(t, "1 + let x = 2")
	assert.Equal(t, parser.ErrExpectedValue, se.Kind)
}

// ---- 5. Errors ----

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		source  string
		kind    parser.ErrorKind
		message string
	}{
		{"1 +", parser.ErrEndOfInput, "unexpected end of input"},
		{"(1 + 2", parser.ErrExpectedCloseParen, "closing parenthesis"},
		{"(", parser.ErrEndOfInput, "unexpected end of input"},
		{"if 1 2 else 3", parser.ErrMissingThen, "'then'"},
		{"if 1 then 2", parser.ErrMissingElse, "'else'"},
		{"if 1 then 2 3", parser.ErrMissingElse, "'else'"},
		{"let = 3", parser.ErrExpectedIdentifier, "identifier"},
		{"let 5 = 3", parser.ErrExpectedIdentifier, "identifier"},
		{"let x 3", parser.ErrExpectedEquals, "'='"},
		{"let x", parser.ErrExpectedEquals, "'='"},
		{"let x =", parser.ErrEndOfInput, "unexpected end of input"},
		{"* 2", parser.ErrExpectedValue, "expected a value"},
		{")", parser.ErrExpectedValue, "expected a value"},
		{"then", parser.ErrExpectedValue, "keyword 'then'"},
		{"1 1", parser.ErrInvalidSyntax, "invalid syntax"},
		{"(1) (2)", parser.ErrInvalidSyntax, "invalid syntax"},
		{"1 = 2", parser.ErrInvalidSyntax, "invalid syntax"},
		{"x )", parser.ErrInvalidSyntax, "invalid syntax"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			se := mustFail(t, tt.source)
			assert.Equal(t, tt.kind, se.Kind, "message: %s", se.Error())
			assert.True(t, strings.Contains(se.Error(), tt.message), "got %q, want it to contain %q", se.Error(), tt.message)
			assert.Equal(t, "E_PARSE", se.Diag.Code)
		})
	}
}

func TestEmptyTokenList(t *testing.T) {
	_, _, err := parser.Parse(nil)
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, parser.ErrEndOfInput, se.Kind)
}

// ---- 6. Consumed flag ----

func TestParseReportsConsumption(t *testing.T) {
	tokens, err := lexer.Tokenize("1 1")
	require.NoError(t, err)

	node, consumed, err := parser.Parse(tokens)
	require.NoError(t, err, "the prefix '1' is a valid parse")
	assert.False(t, consumed)
	assert.Equal(t, "1", sexpr(node))

	tokens, err = lexer.Tokenize("1 + 1")
	require.NoError(t, err)
	_, consumed, err = parser.Parse(tokens)
	require.NoError(t, err)
	assert.True(t, consumed)
}

// ---- 7. Depth limit ----

func TestMaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 10) + "1" + strings.Repeat(")", 10)
	tokens, err := lexer.Tokenize(deep)
	require.NoError(t, err)

	_, err = parser.ParseLine(tokens, parser.WithMaxDepth(10))
	require.NoError(t, err)

	_, err = parser.ParseLine(tokens, parser.WithMaxDepth(9))
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, parser.ErrTooDeep, se.Kind)

	negs := strings.Repeat("-", 5) + "1"
	tokens, err = lexer.Tokenize(negs)
	require.NoError(t, err)
	_, err = parser.ParseLine(tokens, parser.WithMaxDepth(4))
	require.True(t, errors.As(err, &se))
	assert.Equal(t, parser.ErrTooDeep, se.Kind)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "missing-then", parser.ErrMissingThen.String())
	assert.Equal(t, "ErrorKind(99)", parser.ErrorKind(99).String())
}
