package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/sawmill/internal/adapter"
	"github.com/dshills/sawmill/internal/config"
	"github.com/dshills/sawmill/internal/logging"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitCheckFailed  = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

// exitError carries an explicit exit code. Errors without one are treated
// as usage or configuration errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func runtimeError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitRuntimeError, err: err}
}

// exitCodeFor maps an error returned by a command to a process exit code.
func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config   string
	logLevel string
	logJSON  bool
	noColor  bool
}

// app holds the per-invocation state of the command tree.
type app struct {
	flags    globalFlags
	registry *adapter.Registry
	logger   *slog.Logger
	exitCode int
}

// Run executes the root command and returns an exit code.
func Run() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{registry: builtinRegistry(), exitCode: ExitSuccess}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	return a.exitCode
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sawmill",
		Short: "Triage EDA build logs",
		Long: "Sawmill parses build logs from EDA tools into structured messages, " +
			"filters and groups them, and gates CI on severity with auditable waivers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.Init(cmd.ErrOrStderr(), a.flags.logJSON, logging.ParseLevel(a.flags.logLevel))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "Config file (default: <repo root>/sawmill.toml, then the user config dir)")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error)")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "Emit diagnostics as JSON on stderr")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(
		newShowCmd(a),
		newCheckCmd(a),
		newWaiversCmd(a),
		newPluginsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// loadConfig builds the effective config with the given flag overrides.
func (a *app) loadConfig(overrides map[string]string) (config.Config, error) {
	cfg, err := config.Load(a.flags.config, overrides)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Path != "" {
		a.log().Debug("config loaded", "path", cfg.Path)
	}
	return cfg, nil
}

// colorEnabled resolves --no-color, the config setting and terminal
// detection, in that order.
func (a *app) colorEnabled(cfg config.Config) bool {
	if a.flags.noColor {
		return false
	}
	if enabled, ok := cfg.ColorEnabled(); ok {
		return enabled
	}
	return !color.NoColor
}

func (a *app) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print sawmill version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sawmill version %s\n", version)
		},
	}
}
