package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thomasrohde/calc/pkg/config"
	"github.com/thomasrohde/calc/pkg/diagnostics"
	"github.com/thomasrohde/calc/pkg/formatter"
	"github.com/thomasrohde/calc/pkg/runtime"
)

type rootFlags struct {
	configPath string
	debug      bool
	color      string
	json       bool
}

// app holds the state shared by every subcommand.
type app struct {
	flags     rootFlags
	cfg       *config.Config
	cfgSource string
	log       slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		log:    logger.NewNopLogger(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	root := &cobra.Command{
		Use:   "calc",
		Short: "An interactive integer calculator.",
		Long: `An interactive integer calculator.

With no command, calc starts the REPL. Scripts are evaluated one line at a
time in a single session, so bindings made on one line are visible on the
next.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runREPL(cmd.Context())
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config `file` (default ./.calc.yaml, then ~/.calc/config.yaml)")
	pf.BoolVar(&a.flags.debug, "debug", false, "log each pipeline stage to stderr")
	pf.StringVar(&a.flags.color, "color", "", "colour output: auto, always, never")
	pf.BoolVar(&a.flags.json, "json", false, "print results and diagnostics as JSON")

	root.AddCommand(
		a.replCmd(),
		a.evalCmd(),
		a.runCmd(),
		a.checkCmd(),
		a.fmtCmd(),
		a.traceCmd(),
		a.configCmd(),
	)
	root.SetHelpCommand(a.helpCmd())
	return root
}

// setup loads the configuration, applies flag overrides, and builds the
// logger and colour settings.
func (a *app) setup() error {
	cfg, source, err := a.loadConfig()
	if err != nil {
		return a.fail(runtime.ExitUsage, diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), 0, 0, ""))
	}
	if a.flags.debug {
		cfg.Debug = true
	}
	if a.flags.color != "" {
		cfg.Color = a.flags.color
	}
	if a.flags.json {
		cfg.Pretty = false
	}
	if err := cfg.Validate(); err != nil {
		return a.fail(runtime.ExitUsage, diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), 0, 0, ""))
	}
	a.cfg, a.cfgSource = cfg, source

	if cfg.Debug {
		a.log = logger.NewFromOptions(&logger.Options{
			SyncWriter:   syncWriterFor(a.stderr),
			DepthDelta:   3,
			IncludeDebug: true,
		})
	}
	a.log.Debugf("config: using %s", source)

	switch cfg.Color {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(a.stdout)
	}
	return nil
}

func (a *app) loadConfig() (*config.Config, string, error) {
	if a.flags.configPath != "" {
		cfg, err := config.LoadFile(a.flags.configPath)
		if errors.Is(err, fs.ErrNotExist) {
			err = &config.Error{Path: a.flags.configPath, Err: err}
		}
		if err != nil {
			return nil, a.flags.configPath, err
		}
		return cfg, a.flags.configPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	return config.Load(wd)
}

func (a *app) pretty() bool {
	return a.cfg == nil || a.cfg.Pretty
}

// fail prints diags to stderr and returns an already-reported exit error.
func (a *app) fail(code int, diags ...diagnostics.Diagnostic) error {
	fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, a.pretty()))
	return &exitError{code: code}
}

func (a *app) sessionOptions(file string) []runtime.Option {
	return []runtime.Option{
		runtime.WithLogger(a.log),
		runtime.WithMaxDepth(a.cfg.MaxDepth),
		runtime.WithFile(file),
	}
}

// newSession creates a session and evaluates the configured prelude into it.
func (a *app) newSession(file string, opts ...runtime.Option) (*runtime.Session, error) {
	s := runtime.New(append(a.sessionOptions(file), opts...)...)
	if res := s.Preload(a.cfg.Prelude...); res != nil {
		d, _ := res.Diagnostic()
		d.File = "prelude"
		code := runtime.ExitRuntime
		if diagnostics.IsStatic(d.Code) {
			code = runtime.ExitStatic
		}
		return nil, a.fail(code, d)
	}
	a.log.Infof("session %s: ready with %d bindings", s.ID(), s.Env().Len())
	return s, nil
}

// printResult reports a script line: values to stdout, errors to stderr as
// located diagnostics.
func (a *app) printResult(res *runtime.Result) {
	if res.Skipped {
		return
	}
	if !a.pretty() {
		b, _ := json.Marshal(res)
		fmt.Fprintln(a.stdout, string(b))
		return
	}
	if d, ok := res.Diagnostic(); ok {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostic(d, true))
		return
	}
	fmt.Fprintln(a.stdout, formatter.ValueString(res.Value, !color.NoColor))
}

// readSource reads a program file, or stdin when file is "-".
func (a *app) readSource(file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", "", a.fail(runtime.ExitUsage,
				diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error reading stdin: %s", err), 0, 0, ""))
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", a.fail(runtime.ExitUsage,
			diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 0, 0, ""))
	}
	return string(data), file, nil
}

// nopSyncWriter adapts a writer with nothing to flush, such as a test
// buffer, to logger.SyncWriter.
type nopSyncWriter struct {
	io.Writer
}

func (nopSyncWriter) Sync() error {
	return nil
}

func syncWriterFor(w io.Writer) logger.SyncWriter {
	if sw, ok := w.(logger.SyncWriter); ok {
		return sw
	}
	return nopSyncWriter{w}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
