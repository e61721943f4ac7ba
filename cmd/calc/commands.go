package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/help"
	"github.com/thomasrohde/calc/pkg/runtime"
)

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive calculator (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runREPL(cmd.Context())
		},
	}
}

func (a *app) evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <line>...",
		Short: "Evaluate each argument as a line in one session",
		Example: `  calc eval "let x = 6" "x * 7"
  calc --json eval "1 / 0"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession("<eval>")
			if err != nil {
				return err
			}
			return a.runScript(cmd.Context(), s, strings.NewReader(strings.Join(args, "\n")), true)
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	var (
		keepGoing bool
		tracePath string
	)
	cmd := &cobra.Command{
		Use:   "run <file|->",
		Short: "Evaluate a script line by line",
		Long: `Evaluate a script line by line in one session.

Each non-blank line is printed as it is evaluated. The run stops at the first
failing line unless --keep-going is set. The exit code is 2 if any line had a
lex or parse error, 4 if any line evaluated to an error, and 0 otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(args[0])
			if err != nil {
				return err
			}
			var opts []runtime.Option
			if tracePath != "" {
				f, err := os.Create(tracePath)
				if err != nil {
					return a.fail(runtime.ExitUsage, diagnostics.MakeDiag(diagnostics.EIO,
						fmt.Sprintf("cannot create trace file: %s", tracePath), 0, 0, ""))
				}
				defer f.Close()
				opts = append(opts, runtime.WithTrace(runtime.NewTraceWriter(f)))
			}
			s, err := a.newSession(filename, opts...)
			if err != nil {
				return err
			}
			return a.runScript(cmd.Context(), s, strings.NewReader(source), keepGoing)
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue after a failing line")
	cmd.Flags().StringVar(&tracePath, "trace", "", "write NDJSON trace events to `file`")
	return cmd
}

// runScript evaluates r in s, printing every result, and maps the outcome to
// an exit error.
func (a *app) runScript(ctx context.Context, s *runtime.Session, r io.Reader, keepGoing bool) error {
	sum, err := s.RunScript(ctx, r, func(res *runtime.Result) error {
		a.printResult(res)
		if !res.OK() && !keepGoing {
			return runtime.ErrStop
		}
		return nil
	})
	if err != nil {
		return &exitError{code: runtime.ExitUsage, err: err}
	}
	a.log.Infof("session %s: %d lines, %d values, %d static errors, %d runtime errors",
		s.ID(), sum.Lines, sum.Values, sum.StaticErrors, sum.RuntimeErrors)
	if code := sum.ExitCode(); code != runtime.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|->",
		Short: "Report lex, parse, and static errors without evaluating",
		Long: `Report lex, parse, and static errors without evaluating.

check reports every line that does not parse. When all lines parse it also
reports variables used before any line binds them and division by a literal
zero. Names bound by the configured prelude count as bound.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, filename, err := a.readSource(args[0])
			if err != nil {
				return err
			}
			s, err := a.newSession(filename)
			if err != nil {
				return err
			}
			if diags := s.Check(source); len(diags) > 0 {
				return a.fail(runtime.ExitStatic, diags...)
			}
			if a.pretty() {
				fmt.Fprintln(a.stdout, "No errors found.")
			} else {
				fmt.Fprintln(a.stdout, "[]")
			}
			return nil
		},
	}
}

func (a *app) fmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file|->",
		Short: "Print a script in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && args[0] == "-" {
				return &exitError{code: runtime.ExitUsage, err: errors.New("--write needs a file, not stdin")}
			}
			source, filename, err := a.readSource(args[0])
			if err != nil {
				return err
			}
			s := runtime.New(a.sessionOptions(filename)...)
			out, err := s.Format(source)
			if err != nil {
				var de *runtime.DiagnosticError
				if errors.As(err, &de) {
					return a.fail(runtime.ExitStatic, de.Diagnostics...)
				}
				return &exitError{code: runtime.ExitStatic, err: err}
			}
			if !write {
				fmt.Fprint(a.stdout, out)
				return nil
			}
			if err := os.WriteFile(filename, []byte(out), 0o644); err != nil {
				return &exitError{code: runtime.ExitUsage, err: fmt.Errorf("writing %s: %w", filename, err)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "rewrite the file in place")
	return cmd
}

func (a *app) traceCmd() *cobra.Command {
	var text bool
	cmd := &cobra.Command{
		Use:   "trace <file.jsonl|->",
		Short: "Summarize a trace written by run --trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = a.stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return a.fail(runtime.ExitUsage, diagnostics.MakeDiag(diagnostics.EIO,
						fmt.Sprintf("cannot read file: %s", args[0]), 0, 0, ""))
				}
				defer f.Close()
				r = f
			}
			summary, err := runtime.SummarizeTrace(r)
			if err != nil {
				return &exitError{code: runtime.ExitUsage, err: err}
			}
			if text {
				summary.WriteText(a.stdout)
				return nil
			}
			b, err := json.Marshal(summary)
			if err != nil {
				return &exitError{code: runtime.ExitUsage, err: err}
			}
			fmt.Fprintln(a.stdout, string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "print a human-readable summary instead of JSON")
	return cmd
}

func (a *app) helpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help [topic]",
		Short: "Show the quick reference or a help topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(a.stdout, help.QUICKREF)
				return nil
			}
			if _, _, err := help.MatchTopic(args[0]); err != nil {
				if c, _, err := cmd.Root().Find(args); err == nil && c != cmd.Root() && c != cmd {
					return c.Help()
				}
			}
			if err := a.printTopic(args[0]); err != nil {
				return &exitError{code: runtime.ExitUsage}
			}
			return nil
		},
	}
}

// printTopic prints a help topic, or reports the available topics on stderr.
func (a *app) printTopic(query string) error {
	_, content, err := help.MatchTopic(query)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return err
	}
	fmt.Fprint(a.stdout, content)
	return nil
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cfg.Marshal()
			if err != nil {
				return &exitError{code: runtime.ExitUsage, err: err}
			}
			fmt.Fprintf(a.stdout, "# source: %s\n%s", a.cfgSource, data)
			return nil
		},
	}
}
