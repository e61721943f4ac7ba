// Package lexer implements the calc tokenizer.
//
// A Lexer walks a single line of input and yields tokens lazily. The sequence is
// finite and cannot be restarted: after the end of input or the first error,
// Next keeps returning io.EOF.
package lexer

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"unicode/utf8"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokKeyword  TokenType = iota // let, if, then, else
	TokIdent                     // alphanumeric, not all digits, not a keyword
	TokInt                       // all digits
	TokOperator                  // = + - * / > <
	TokParen                     // ( )
)

func (t TokenType) String() string {
	switch t {
	case TokKeyword:
		return "keyword"
	case TokIdent:
		return "identifier"
	case TokInt:
		return "integer"
	case TokOperator:
		return "operator"
	case TokParen:
		return "parenthesis"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Int   int32 // set for TokInt
	Span  ast.Span
}

// Is reports whether the token has the given type and source text.
func (t Token) Is(typ TokenType, value string) bool {
	return t.Type == typ && t.Value == value
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

var keywords = map[string]bool{
	"let":  true,
	"if":   true,
	"then": true,
	"else": true,
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

// Lexer yields the tokens of one line of input.
type Lexer struct {
	source string
	pos    int
	done   bool
}

// New returns a lexer positioned at the start of source.
func New(source string) *Lexer {
	return &Lexer{source: source}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\f' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || isDigit(ch)
}

// column converts a byte offset into a 1-based character column.
func (l *Lexer) column(pos int) int {
	return utf8.RuneCountInString(l.source[:pos]) + 1
}

func (l *Lexer) span(start int) ast.Span {
	return ast.Span{StartCol: l.column(start), EndCol: l.column(l.pos)}
}

func (l *Lexer) lexError(start, end int, msg string) error {
	l.done = true
	diag := diagnostics.MakeDiag(diagnostics.ELex, msg, l.column(start), l.column(end), "")
	return &LexError{Diag: diag}
}

// Next returns the next token, io.EOF at the end of input, or a *LexError.
func (l *Lexer) Next() (Token, error) {
	if l.done {
		return Token{}, io.EOF
	}
	for l.pos < len(l.source) && isWhitespace(l.source[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.source) {
		l.done = true
		return Token{}, io.EOF
	}

	start := l.pos
	ch := l.source[l.pos]

	// Single-char tokens
	switch ch {
	case '=', '+', '-', '*', '/', '>', '<':
		l.pos++
		return Token{Type: TokOperator, Value: string(ch), Span: l.span(start)}, nil
	case '(', ')':
		l.pos++
		return Token{Type: TokParen, Value: string(ch), Span: l.span(start)}, nil
	}

	for l.pos < len(l.source) && isAlphaNumeric(l.source[l.pos]) {
		l.pos++
	}
	word := l.source[start:l.pos]

	if word == "" {
		r, size := utf8.DecodeRuneInString(l.source[start:])
		return Token{}, l.lexError(start, start+size,
			fmt.Sprintf("unexpected character '%c' at column %d", r, l.column(start)))
	}

	allDigits := true
	for i := 0; i < len(word); i++ {
		if !isDigit(word[i]) {
			allDigits = false
			break
		}
	}

	if allDigits {
		n, err := strconv.ParseInt(word, 10, 32)
		if err != nil {
			return Token{}, l.lexError(start, l.pos,
				fmt.Sprintf("integer literal '%s' out of range at column %d", word, l.column(start)))
		}
		return Token{Type: TokInt, Value: word, Int: int32(n), Span: l.span(start)}, nil
	}

	if keywords[word] {
		return Token{Type: TokKeyword, Value: word, Span: l.span(start)}, nil
	}
	return Token{Type: TokIdent, Value: word, Span: l.span(start)}, nil
}

// All returns the remaining tokens as a lazy sequence. Iteration stops after
// the first error, which is yielded together with a zero Token.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Tokenize breaks one line of source into a slice of tokens, stopping at the
// first lexical error.
func Tokenize(source string) ([]Token, error) {
	var tokens []Token
	for tok, err := range New(source).All() {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
