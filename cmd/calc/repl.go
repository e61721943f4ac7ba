package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/thomasrohde/calc/pkg/config"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/evaluator"
	"github.com/thomasrohde/calc/pkg/formatter"
	"github.com/thomasrohde/calc/pkg/help"
	"github.com/thomasrohde/calc/pkg/runtime"
)

// runREPL reads lines until end of input or :quit. Errors on a line are
// printed and the session carries on. The prompt and line editing are only
// used when stdin is a terminal. An interrupt does not end the session: liner
// discards the pending line, and piped input carries on with the next one.
func (a *app) runREPL(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	s, err := a.newSession("")
	if err != nil {
		return err
	}
	if isTerminal(a.stdin) && isTerminal(a.stdout) {
		return a.interactive(ctx, s)
	}
	scanner := bufio.NewScanner(a.stdin)
	scanner.Buffer(nil, runtime.MaxLineSize)
	return a.replLoop(ctx, s, func() (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	})
}

func (a *app) interactive(ctx context.Context, s *runtime.Session) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := a.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				a.log.Warningf("history: %s", err)
				return
			}
			f, err := os.Create(histPath)
			if err != nil {
				a.log.Warningf("history: %s", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	fmt.Fprintln(a.stdout, color.New(color.FgBlue).Sprintf("calc %s (type :help for help, :quit to exit)", help.Version))
	return a.replLoop(ctx, s, func() (string, error) {
		line, err := ln.Prompt(a.cfg.Prompt)
		if err == nil && strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		return line, err
	})
}

func (a *app) historyPath() string {
	if a.cfg.HistoryFile == "" {
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		a.log.Warningf("history disabled: %s", err)
		return ""
	}
	return config.ExpandHome(a.cfg.HistoryFile, home)
}

// replLoop evaluates lines from next until it reports io.EOF. An aborted
// prompt discards the line.
func (a *app) replLoop(ctx context.Context, s *runtime.Session, next func() (string, error)) error {
	for ctx.Err() == nil {
		line, err := next()
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &exitError{code: runtime.ExitUsage, err: fmt.Errorf("reading input: %w", err)}
		}

		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ":") {
			if a.meta(s, line) {
				return nil
			}
			continue
		}
		a.printValue(s.Eval(line))
	}
	return nil
}

// printValue reports a REPL line. Runtime errors are values and print like
// values; static errors print as diagnostics on stderr.
func (a *app) printValue(res *runtime.Result) {
	switch {
	case res.Skipped:
	case res.Kind() == runtime.KindStatic:
		d, _ := res.Diagnostic()
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostic(d, a.pretty()))
	case !a.pretty():
		b, err := evaluator.ValueToJSON(res.Value)
		if err != nil {
			a.log.Errorf("encoding result: %s", err)
			return
		}
		fmt.Fprintln(a.stdout, string(b))
	default:
		fmt.Fprintln(a.stdout, formatter.ValueString(res.Value, !color.NoColor))
	}
}

// meta runs a colon command and reports whether the REPL should exit.
func (a *app) meta(s *runtime.Session, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":quit", ":q", ":exit":
		return true
	case ":env":
		formatter.WriteBindings(a.stdout, s.Env().Snapshot())
	case ":help":
		if arg == "" {
			fmt.Fprint(a.stdout, help.QUICKREF)
		} else {
			_ = a.printTopic(arg)
		}
	case ":ast":
		node, err := s.Parse(arg)
		if err != nil {
			fmt.Fprintln(a.stderr, color.RedString("error: %s", err))
			return false
		}
		formatter.Dump(a.stdout, node)
	default:
		fmt.Fprintf(a.stderr, "unknown command %s; try :help repl\n", name)
	}
	return false
}
