package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/thomasrohde/calc/pkg/diagnostics"
)

func init() {
	color.NoColor = true
}

func TestMakeDiag(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EParse, "unexpected token", 3, 4, "check syntax")

	if d.Code != diagnostics.EParse {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EParse)
	}
	if d.Message != "unexpected token" {
		t.Errorf("got Message = %q, want %q", d.Message, "unexpected token")
	}
	if d.Col != 3 || d.EndCol != 4 {
		t.Errorf("got cols %d..%d, want 3..4", d.Col, d.EndCol)
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EUnbound, "Variable 'x' does not exist", 5, 6, "did you mean 'y'?").
		At("test.calc", 3, "1 + x")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNBOUND]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.calc:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "|     ^") {
		t.Errorf("expected caret under column 5, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticNoLocation(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EIO, "cannot read file", 0, 0, "")
	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "--> <input>") {
		t.Errorf("expected placeholder location, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "bad token", 0, 0, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_LEX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
}

func TestFormatDiagnosticsEmptyJSON(t *testing.T) {
	if got := diagnostics.FormatDiagnostics(nil, false); got != "[]" {
		t.Errorf("got %s, want []", got)
	}
}

func TestIsStatic(t *testing.T) {
	if !diagnostics.IsStatic(diagnostics.ELex) || !diagnostics.IsStatic(diagnostics.EParse) {
		t.Error("lex and parse codes should be static")
	}
	if diagnostics.IsStatic(diagnostics.EDivZero) {
		t.Error("E_DIV_ZERO should not be static")
	}
}
