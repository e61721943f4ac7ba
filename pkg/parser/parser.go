// Package parser implements the calc parser.
//
// The parser is a recursive-descent parser over an immutable token buffer.
// Every production records the cursor before it starts and puts it back on
// any failure, so a caller can try another production from the same point.
//
// Grammar:
//
//	statement := "let" IDENT "=" expr | expr
//	expr      := level1 ( (">" | "<") level1 )*
//	level1    := level2 ( ("+" | "-") level2 )*
//	level2    := factor ( ("*" | "/") factor )*
//	factor    := "(" expr ")" | "if" expr "then" expr "else" expr
//	           | "-" factor | INT | IDENT
package parser

import (
	"fmt"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/lexer"
)

// ErrorKind classifies a syntax error.
type ErrorKind int

const (
	ErrEndOfInput ErrorKind = iota
	ErrExpectedNumber
	ErrExpectedIdentifier
	ErrExpectedOpenParen
	ErrExpectedCloseParen
	ErrExpectedOperator
	ErrExpectedValue
	ErrMissingThen
	ErrMissingElse
	ErrExpectedEquals
	ErrInvalidSyntax
	ErrTooDeep
)

var errorKindNames = map[ErrorKind]string{
	ErrEndOfInput:         "end-of-input",
	ErrExpectedNumber:     "expected-number",
	ErrExpectedIdentifier: "expected-identifier",
	ErrExpectedOpenParen:  "expected-open-paren",
	ErrExpectedCloseParen: "expected-close-paren",
	ErrExpectedOperator:   "expected-operator",
	ErrExpectedValue:      "expected-value",
	ErrMissingThen:        "missing-then",
	ErrMissingElse:        "missing-else",
	ErrExpectedEquals:     "expected-equals",
	ErrInvalidSyntax:      "invalid-syntax",
	ErrTooDeep:            "too-deep",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SyntaxError wraps a diagnostic for parse errors.
type SyntaxError struct {
	Kind ErrorKind
	Diag diagnostics.Diagnostic
}

func (e *SyntaxError) Error() string {
	return e.Diag.Message
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth limits how deeply parentheses, conditionals, and unary
// operators may nest. Zero means no limit.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		p.maxDepth = n
	}
}

// Parser holds a cursor into a token buffer.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	maxDepth int
}

// New creates a parser over tokens.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses one statement from tokens. The boolean result reports whether
// every token was consumed; callers must treat false as a syntax error.
func Parse(tokens []lexer.Token, opts ...Option) (ast.Node, bool, error) {
	p := New(tokens, opts...)
	node, err := p.ParseStatement()
	if err != nil {
		return nil, false, err
	}
	return node, p.Done(), nil
}

// ParseLine parses one statement and requires that every token is consumed.
func ParseLine(tokens []lexer.Token, opts ...Option) (ast.Node, error) {
	p := New(tokens, opts...)
	node, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.Status(); err != nil {
		return nil, err
	}
	return node, nil
}

// Done reports whether the cursor has consumed every token.
func (p *Parser) Done() bool {
	return p.pos >= len(p.tokens)
}

// Status returns an invalid-syntax error if tokens remain after a parse.
func (p *Parser) Status() error {
	if p.Done() {
		return nil
	}
	tok := p.tokens[p.pos]
	return newError(ErrInvalidSyntax, tok.Span, "invalid syntax: unexpected %s '%s'", tok.Type, tok.Value)
}

func newError(kind ErrorKind, span ast.Span, format string, args ...any) *SyntaxError {
	diag := diagnostics.MakeDiag(diagnostics.EParse, fmt.Sprintf(format, args...), span.StartCol, span.EndCol, "")
	return &SyntaxError{Kind: kind, Diag: diag}
}

// here returns the span of the current token, or a one-column span just past
// the last token when the input is exhausted.
func (p *Parser) here() ast.Span {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Span
	}
	if len(p.tokens) == 0 {
		return ast.Span{StartCol: 1, EndCol: 2}
	}
	end := p.tokens[len(p.tokens)-1].Span.EndCol
	return ast.Span{StartCol: end, EndCol: end + 1}
}

func (p *Parser) peek() (lexer.Token, error) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, newError(ErrEndOfInput, p.here(), "unexpected end of input")
	}
	return p.tokens[p.pos], nil
}

// fail restores the cursor to save and returns a new syntax error located at
// the current token.
func (p *Parser) fail(save int, kind ErrorKind, format string, args ...any) error {
	err := newError(kind, p.here(), format, args...)
	p.pos = save
	return err
}

// restore resets the cursor to save and passes err through.
func (p *Parser) restore(save int, err error) error {
	p.pos = save
	return err
}

// --- Statements ---

// ParseStatement parses a binding or an expression starting at the cursor.
func (p *Parser) ParseStatement() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Is(lexer.TokKeyword, "let") {
		return p.parseBinding()
	}
	return p.parseExpr()
}

func (p *Parser) parseBinding() (ast.Node, error) {
	save := p.pos
	start, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !start.Is(lexer.TokKeyword, "let") {
		return nil, p.fail(save, ErrInvalidSyntax, "expected 'let' keyword in binding statement")
	}
	p.pos++

	nameTok, err := p.peek()
	if err != nil || nameTok.Type != lexer.TokIdent {
		return nil, p.fail(save, ErrExpectedIdentifier, "expected an identifier after 'let' keyword")
	}
	p.pos++

	eq, err := p.peek()
	if err != nil || !eq.Is(lexer.TokOperator, "=") {
		return nil, p.fail(save, ErrExpectedEquals, "expected '=' in binding statement")
	}
	p.pos++

	value, err := p.parseExpr()
	if err != nil {
		return nil, p.restore(save, err)
	}
	return &ast.Binding{
		Span:  ast.Join(start.Span, value.NodeSpan()),
		Name:  nameTok.Value,
		Value: value,
	}, nil
}

// --- Expressions ---

func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseLeftAssoc(p.parseLevel1, ast.OpGt, ast.OpLt)
}

func (p *Parser) parseLevel1() (ast.Node, error) {
	return p.parseLeftAssoc(p.parseLevel2, ast.OpAdd, ast.OpSub)
}

func (p *Parser) parseLevel2() (ast.Node, error) {
	return p.parseLeftAssoc(p.parseFactor, ast.OpMul, ast.OpDiv)
}

// parseLeftAssoc parses `next ( op next )*` for the given operators and folds
// the operands into a left-leaning tree.
func (p *Parser) parseLeftAssoc(next func() (ast.Node, error), ops ...ast.BinaryOperator) (ast.Node, error) {
	save := p.pos
	left, err := next()
	if err != nil {
		return nil, p.restore(save, err)
	}
	for {
		op, ok := p.matchOperator(ops)
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := next()
		if err != nil {
			return nil, p.restore(save, err)
		}
		left = &ast.BinaryOp{
			Span:  ast.Join(left.NodeSpan(), right.NodeSpan()),
			Left:  left,
			Op:    op,
			Right: right,
		}
	}
}

func (p *Parser) matchOperator(ops []ast.BinaryOperator) (ast.BinaryOperator, bool) {
	tok, err := p.peek()
	if err != nil || tok.Type != lexer.TokOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.Value == string(op) {
			return op, true
		}
	}
	return "", false
}

func (p *Parser) parseFactor() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Is(lexer.TokParen, "("):
		return p.nested(p.parseParen)
	case tok.Is(lexer.TokKeyword, "if"):
		return p.nested(p.parseIf)
	case tok.Is(lexer.TokOperator, "-"):
		return p.nested(p.parseUnary)
	case tok.Type == lexer.TokInt:
		return p.parseNumber()
	case tok.Type == lexer.TokIdent:
		return p.parseVariable()
	default:
		return nil, newError(ErrExpectedValue, tok.Span, "expected a value, found %s '%s'", tok.Type, tok.Value)
	}
}

// nested enforces the depth limit around a recursive production.
func (p *Parser) nested(fn func() (ast.Node, error)) (ast.Node, error) {
	if p.maxDepth > 0 && p.depth >= p.maxDepth {
		return nil, newError(ErrTooDeep, p.here(), "expression nested too deeply (max depth %d)", p.maxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()
	return fn()
}

func (p *Parser) parseNumber() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.TokInt {
		return nil, newError(ErrExpectedNumber, tok.Span, "expected number")
	}
	p.pos++
	return &ast.IntValue{Span: tok.Span, Value: tok.Int}, nil
}

func (p *Parser) parseVariable() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.TokIdent {
		return nil, newError(ErrExpectedIdentifier, tok.Span, "expected an identifier")
	}
	p.pos++
	return &ast.Identifier{Span: tok.Span, Name: tok.Value}, nil
}

func (p *Parser) parseParen() (ast.Node, error) {
	save := p.pos
	open, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !open.Is(lexer.TokParen, "(") {
		return nil, p.fail(save, ErrExpectedOpenParen, "expected opening parenthesis in parenthesized expression")
	}
	p.pos++

	expr, err := p.parseExpr()
	if err != nil {
		return nil, p.restore(save, err)
	}

	closing, err := p.peek()
	if err != nil || !closing.Is(lexer.TokParen, ")") {
		return nil, p.fail(save, ErrExpectedCloseParen, "expected closing parenthesis in parenthesized expression")
	}
	p.pos++
	return expr, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	save := p.pos
	opTok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !opTok.Is(lexer.TokOperator, "-") {
		return nil, p.fail(save, ErrExpectedOperator, "expected a unary operator")
	}
	p.pos++

	operand, err := p.parseFactor()
	if err != nil {
		return nil, p.restore(save, err)
	}
	return &ast.UnaryOp{
		Span:    ast.Join(opTok.Span, operand.NodeSpan()),
		Op:      ast.OpNeg,
		Operand: operand,
	}, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	save := p.pos
	start, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !start.Is(lexer.TokKeyword, "if") {
		return nil, p.fail(save, ErrInvalidSyntax, "expected 'if' keyword in conditional expression")
	}
	p.pos++

	cond, err := p.parseExpr()
	if err != nil {
		return nil, p.restore(save, err)
	}

	if tok, err := p.peek(); err != nil || !tok.Is(lexer.TokKeyword, "then") {
		return nil, p.fail(save, ErrMissingThen, "expected keyword 'then' after condition in if expression")
	}
	p.pos++

	thenBranch, err := p.parseExpr()
	if err != nil {
		return nil, p.restore(save, err)
	}

	if tok, err := p.peek(); err != nil || !tok.Is(lexer.TokKeyword, "else") {
		return nil, p.fail(save, ErrMissingElse, "expected keyword 'else' after then-branch in if expression")
	}
	p.pos++

	elseBranch, err := p.parseExpr()
	if err != nil {
		return nil, p.restore(save, err)
	}

	return &ast.Conditional{
		Span: ast.Join(start.Span, elseBranch.NodeSpan()),
		Cond: cond,
		Then: thenBranch,
		Else: elseBranch,
	}, nil
}
