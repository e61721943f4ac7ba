// Package runtime provides the calc session orchestrator.
//
// A Session owns one environment for its whole life and runs each line
// through the tokenizer, the parser, and the evaluator in turn.
package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"

	"github.com/thomasrohde/calc/pkg/ast"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/evaluator"
	"github.com/thomasrohde/calc/pkg/formatter"
	"github.com/thomasrohde/calc/pkg/lexer"
	"github.com/thomasrohde/calc/pkg/parser"
	"github.com/thomasrohde/calc/pkg/validator"
)

// Session wires together the calc pipeline over a single environment.
// A Session is not safe for concurrent use.
type Session struct {
	env      *evaluator.Env
	id       string
	file     string
	maxDepth int
	log      slog.Logger
	trace    func(event TraceEvent)
	line     int
}

// Option is a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l slog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithSessionID sets the id used in logs and trace events.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithFile sets the file name reported in diagnostics.
func WithFile(name string) Option {
	return func(s *Session) {
		s.file = name
	}
}

// WithMaxDepth limits expression nesting. Zero means no limit.
func WithMaxDepth(n int) Option {
	return func(s *Session) {
		s.maxDepth = n
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(s *Session) {
		s.trace = fn
	}
}

// New creates a Session with an empty environment.
func New(opts ...Option) *Session {
	s := &Session{
		env: evaluator.NewEnv(),
		log: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.log.Debugf("session %s: started", s.id)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Env returns the session environment. Callers must not modify it.
func (s *Session) Env() *evaluator.Env {
	return s.env
}

// Parse tokenizes and parses one line without evaluating it.
func (s *Session) Parse(line string) (ast.Node, error) {
	tokens, err := lexer.Tokenize(line)
	if err != nil {
		return nil, err
	}
	return parser.ParseLine(tokens, s.parserOptions()...)
}

func (s *Session) parserOptions() []parser.Option {
	if s.maxDepth > 0 {
		return []parser.Option{parser.WithMaxDepth(s.maxDepth)}
	}
	return nil
}

// Eval runs one line through the pipeline. The line is trimmed first; a blank
// line yields a skipped Result and does not advance the line counter.
func (s *Session) Eval(line string) *Result {
	source := strings.TrimSpace(line)
	if source == "" {
		return &Result{Source: source, Skipped: true}
	}
	s.line++
	return s.evalLine(s.line, source)
}

// evalLine runs a trimmed, non-blank line numbered lineNo.
func (s *Session) evalLine(lineNo int, source string) *Result {
	res := &Result{Line: lineNo, Source: source, file: s.file}
	start := time.Now()
	s.emit(TraceLineStart, res, nil)

	tokens, err := lexer.Tokenize(source)
	if err != nil {
		res.Err = err
		s.log.Debugf("session %s: line %d: lex error: %s", s.id, lineNo, err)
		s.finish(res, start)
		return res
	}
	s.log.Debugf("session %s: line %d: %d tokens", s.id, lineNo, len(tokens))

	node, err := parser.ParseLine(tokens, s.parserOptions()...)
	if err != nil {
		res.Err = err
		s.log.Debugf("session %s: line %d: syntax error: %s", s.id, lineNo, err)
		s.finish(res, start)
		return res
	}
	res.Node = node
	nodes := 0
	ast.Walk(node, func(ast.Node) bool {
		nodes++
		return true
	})
	s.log.Debugf("session %s: line %d: parsed %s (%d nodes)", s.id, lineNo, node.Kind(), nodes)

	res.Value = evaluator.Evaluate(node, s.env)
	if b, ok := node.(*ast.Binding); ok {
		if iv, ok := res.Value.(*ast.IntValue); ok {
			s.emit(TraceBinding, res, map[string]any{"name": b.Name, "value": iv.Value})
		}
	}
	s.log.Debugf("session %s: line %d: %s", s.id, lineNo, formatter.ValueString(res.Value, false))
	s.finish(res, start)
	return res
}

func (s *Session) finish(res *Result, start time.Time) {
	data := map[string]any{
		"kind":       res.Kind(),
		"durationUs": time.Since(start).Microseconds(),
	}
	if d, ok := res.Diagnostic(); ok {
		data["code"] = d.Code
	}
	if iv, ok := res.Value.(*ast.IntValue); ok {
		data["value"] = iv.Value
	}
	s.emit(TraceLineEnd, res, data)
}

// Check parses every line of source and validates the script as a whole
// without evaluating anything. Names already bound in the session count as
// bound.
func (s *Session) Check(source string) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	var lines []validator.Line
	for i, text := range splitLines(source) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		node, err := s.Parse(trimmed)
		if err != nil {
			d, _ := errorDiagnostic(err)
			diags = append(diags, d.At(s.file, i+1, trimmed))
			continue
		}
		lines = append(lines, validator.Line{Number: i + 1, Source: trimmed, Node: node})
	}
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(lines,
		validator.WithFile(s.file),
		validator.WithPredefined(s.env.Names()...))
}

// Format parses every line of source and prints it in canonical form.
// Blank lines are preserved.
func (s *Session) Format(source string) (string, error) {
	lines := splitLines(source)
	var failed diagnostics.Diagnostic
	out, err := formatter.FormatLines(lines, func(lineNo int, line string) (ast.Node, error) {
		node, err := s.Parse(line)
		if err != nil {
			d, _ := errorDiagnostic(err)
			failed = d.At(s.file, lineNo, line)
		}
		return node, err
	})
	if err != nil {
		return "", &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{failed}}
	}
	if len(out) == 0 {
		return "", nil
	}
	return strings.Join(out, "\n") + "\n", nil
}

func splitLines(source string) []string {
	source = strings.TrimRight(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	if source == "" {
		return nil
	}
	return strings.Split(source, "\n")
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
