// Package diagnostics defines calc diagnostic types for lex, parse, and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Diagnostic code constants.
const (
	// Static (lex/parse) errors.
	ELex   = "E_LEX"
	EParse = "E_PARSE"

	// Runtime errors carried by ErrorValue.
	EUnbound = "E_UNBOUND"
	EDivZero = "E_DIV_ZERO"
	EType    = "E_TYPE"
	ECond    = "E_COND"

	// Tooling errors.
	EIO     = "E_IO"
	EConfig = "E_CONFIG"
)

// Diagnostic represents a lex, parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	EndCol  int    `json:"endCol,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Source  string `json:"-"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, col, endCol int, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Col:     col,
		EndCol:  endCol,
		Hint:    hint,
	}
}

// IsStatic reports whether the code belongs to a lex or parse error.
func IsStatic(code string) bool {
	return code == ELex || code == EParse
}

// At returns a copy of d located at the given file, line, and source text.
func (d Diagnostic) At(file string, line int, source string) Diagnostic {
	d.File = file
	d.Line = line
	d.Source = source
	return d
}

func (d Diagnostic) location() string {
	file := d.File
	if file == "" {
		file = "<input>"
	}
	switch {
	case d.Line > 0 && d.Col > 0:
		return fmt.Sprintf("%s:%d:%d", file, d.Line, d.Col)
	case d.Line > 0:
		return fmt.Sprintf("%s:%d", file, d.Line)
	case d.Col > 0:
		return fmt.Sprintf("%s:%d", file, d.Col)
	default:
		return file
	}
}

// FormatDiagnostic formats a single diagnostic for display.
// Non-pretty output is a single JSON object.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	out := fmt.Sprintf("%s: %s\n  --> %s", red(fmt.Sprintf("error[%s]", d.Code)), d.Message, d.location())
	if d.Source != "" && d.Col > 0 {
		width := d.EndCol - d.Col
		if width < 1 {
			width = 1
		}
		out += fmt.Sprintf("\n   | %s\n   | %s%s", d.Source, strings.Repeat(" ", d.Col-1), red(strings.Repeat("^", width)))
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
