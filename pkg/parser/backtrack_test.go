package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/calc/pkg/lexer"
)

func newTestParser(t *testing.T, source string) *Parser {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	require.NoError(t, err)
	return New(tokens)
}

// A failed production must leave the cursor where it started.
func TestFailedProductionRestoresCursor(t *testing.T) {
	tests := []struct {
		source string
		parse  func(p *Parser) error
	}{
		{"if 1 then 2", func(p *Parser) error { _, err := p.parseIf(); return err }},
		{"if 1 2 else 3", func(p *Parser) error { _, err := p.parseIf(); return err }},
		{"(1 + 2", func(p *Parser) error { _, err := p.parseParen(); return err }},
		{"(1 +", func(p *Parser) error { _, err := p.parseParen(); return err }},
		{"- )", func(p *Parser) error { _, err := p.parseUnary(); return err }},
		{"let x 1", func(p *Parser) error { _, err := p.parseBinding(); return err }},
		{"let x = (", func(p *Parser) error { _, err := p.parseBinding(); return err }},
		{"1 + 2 * )", func(p *Parser) error { _, err := p.parseExpr(); return err }},
		{"1 > (2", func(p *Parser) error { _, err := p.parseExpr(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			p := newTestParser(t, tt.source)
			require.Error(t, tt.parse(p))
			assert.Equal(t, 0, p.pos, "cursor not restored")
			assert.Equal(t, 0, p.depth, "depth not unwound")
		})
	}
}

// After a failure from a mid-buffer position, the cursor returns to that
// position rather than the start of the buffer.
func TestRestoreToSavedStart(t *testing.T) {
	p := newTestParser(t, "1 + if 2 then 3")
	p.pos = 2
	_, err := p.parseIf()
	require.Error(t, err)
	assert.Equal(t, 2, p.pos)
}

func TestAlternativeAfterFailure(t *testing.T) {
	p := newTestParser(t, "(4")
	_, err := p.parseParen()
	require.Error(t, err)

	// The same starting point is still usable by another production.
	tok, err := p.peek()
	require.NoError(t, err)
	assert.True(t, tok.Is(lexer.TokParen, "("))
}

func TestSuccessAdvancesCursor(t *testing.T) {
	p := newTestParser(t, "2 * 3 )")
	node, err := p.parseExpr()
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, 3, p.pos)
	assert.False(t, p.Done())
	assert.Error(t, p.Status())
}

func TestErrorSpanAtEndOfInput(t *testing.T) {
	p := newTestParser(t, "1 +")
	_, err := p.ParseStatement()
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, ErrEndOfInput, se.Kind)
	assert.Equal(t, 4, se.Diag.Col)
}
