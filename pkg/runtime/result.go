package runtime

import (
	"encoding/json"
	"errors"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/lexer"
	"github.com/thomasrohde/calc/pkg/parser"
)

// Result kinds reported by Result.Kind.
const (
	KindSkipped = "skipped"
	KindValue   = "value"
	KindRuntime = "runtime-error"
	KindStatic  = "static-error"
)

// Result holds the outcome of one line.
//
// Exactly one of these holds: Skipped is set for a blank line, Err is a
// *lexer.LexError or *parser.SyntaxError, or Value is an *ast.IntValue or
// *ast.ErrorValue.
type Result struct {
	Line    int
	Source  string
	Node    ast.Node
	Value   ast.Node
	Err     error
	Skipped bool

	file string
}

// Kind classifies the result.
func (r *Result) Kind() string {
	switch {
	case r.Skipped:
		return KindSkipped
	case r.Err != nil:
		return KindStatic
	case isError(r.Value):
		return KindRuntime
	default:
		return KindValue
	}
}

// OK reports whether the line produced an integer or was blank.
func (r *Result) OK() bool {
	k := r.Kind()
	return k == KindValue || k == KindSkipped
}

// Int returns the integer value, if the line produced one.
func (r *Result) Int() (int32, bool) {
	if iv, ok := r.Value.(*ast.IntValue); ok {
		return iv.Value, true
	}
	return 0, false
}

// Diagnostic converts a static or runtime error into a located diagnostic.
// It reports false for blank lines and integer results.
func (r *Result) Diagnostic() (diagnostics.Diagnostic, bool) {
	var d diagnostics.Diagnostic
	switch {
	case r.Err != nil:
		d, _ = errorDiagnostic(r.Err)
	case isError(r.Value):
		ev := r.Value.(*ast.ErrorValue)
		d = diagnostics.MakeDiag(ev.Code, ev.Message, ev.Span.StartCol, ev.Span.EndCol, ev.Hint)
	default:
		return d, false
	}
	return d.At(r.file, r.Line, r.Source), true
}

func isError(n ast.Node) bool {
	_, ok := n.(*ast.ErrorValue)
	return ok
}

// errorDiagnostic extracts the diagnostic carried by a pipeline error. Other
// errors become E_IO diagnostics and report false.
func errorDiagnostic(err error) (diagnostics.Diagnostic, bool) {
	var le *lexer.LexError
	if errors.As(err, &le) {
		return le.Diag, true
	}
	var se *parser.SyntaxError
	if errors.As(err, &se) {
		return se.Diag, true
	}
	return diagnostics.MakeDiag(diagnostics.EIO, err.Error(), 0, 0, ""), false
}

// resultJSON is the wire shape of one line's outcome, as printed by run --json.
type resultJSON struct {
	Line       int                     `json:"line"`
	Kind       string                  `json:"kind"`
	Value      *int32                  `json:"value,omitempty"`
	Diagnostic *diagnostics.Diagnostic `json:"diagnostic,omitempty"`
}

// MarshalJSON encodes the result as {"line":N,"kind":K} plus the integer
// value or the located diagnostic.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Line: r.Line, Kind: r.Kind()}
	if n, ok := r.Int(); ok {
		out.Value = &n
	}
	if d, ok := r.Diagnostic(); ok {
		out.Diagnostic = &d
	}
	return json.Marshal(out)
}
