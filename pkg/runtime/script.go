package runtime

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrStop may be returned by a RunScript callback to end the run early
// without reporting an error.
var ErrStop = errors.New("stop")

// ScriptSummary counts the outcomes of a script run.
type ScriptSummary struct {
	Lines         int `json:"lines"`
	Values        int `json:"values"`
	StaticErrors  int `json:"staticErrors"`
	RuntimeErrors int `json:"runtimeErrors"`
}

// Failed reports whether any line failed.
func (s ScriptSummary) Failed() bool {
	return s.StaticErrors > 0 || s.RuntimeErrors > 0
}

// Process exit codes used by the calc CLI.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitStatic  = 2
	ExitRuntime = 4
)

// MaxLineSize is the longest script or trace line that can be read.
const MaxLineSize = 16 << 20

// ExitCode maps the summary to a process exit code. Static errors outrank
// runtime errors.
func (s ScriptSummary) ExitCode() int {
	switch {
	case s.StaticErrors > 0:
		return ExitStatic
	case s.RuntimeErrors > 0:
		return ExitRuntime
	default:
		return ExitOK
	}
}

// RunScript evaluates r line by line in this session, calling fn with each
// non-blank line's result. Line numbers in results are the script's own.
// The context is checked between lines. A callback error stops the run; it is
// returned unless it is ErrStop.
func (s *Session) RunScript(ctx context.Context, r io.Reader, fn func(*Result) error) (ScriptSummary, error) {
	var sum ScriptSummary
	s.emit(TraceRunStart, nil, nil)
	defer func() {
		s.emit(TraceRunEnd, nil, map[string]any{
			"lines":         sum.Lines,
			"values":        sum.Values,
			"staticErrors":  sum.StaticErrors,
			"runtimeErrors": sum.RuntimeErrors,
		})
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, MaxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		s.line = lineNo
		res := s.evalLine(lineNo, text)
		sum.Lines++
		switch res.Kind() {
		case KindValue:
			sum.Values++
		case KindRuntime:
			sum.RuntimeErrors++
		case KindStatic:
			sum.StaticErrors++
		}
		if fn == nil {
			continue
		}
		if err := fn(res); err != nil {
			if errors.Is(err, ErrStop) {
				return sum, nil
			}
			return sum, err
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("reading script: %w", err)
	}
	s.log.Debugf("session %s: script done: %d lines, %d values, %d static errors, %d runtime errors",
		s.id, sum.Lines, sum.Values, sum.StaticErrors, sum.RuntimeErrors)
	return sum, nil
}

// EvalAll evaluates each line in order and returns every result, blank lines
// included.
func (s *Session) EvalAll(lines ...string) []*Result {
	out := make([]*Result, len(lines))
	for i, line := range lines {
		out[i] = s.Eval(line)
	}
	return out
}

// Preload evaluates lines ahead of user input, such as a configured prelude.
// It stops at the first line that fails and returns its result, or nil when
// every line succeeded. Line numbering restarts at 1 afterwards.
func (s *Session) Preload(lines ...string) *Result {
	defer func() { s.line = 0 }()
	for _, line := range lines {
		if res := s.Eval(line); !res.OK() {
			return res
		}
	}
	return nil
}
