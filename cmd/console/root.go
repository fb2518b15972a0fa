package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// app holds the flags and resources shared by every subcommand.
type app struct {
	logLevel    string
	logFormat   string
	logFile     string
	showMetrics bool
	noColor     bool

	logger   *slog.Logger
	closeLog func() error
	registry *prometheus.Registry
	metrics  *partialamm.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "partialamm",
		Short: "Constant-product reserve pool simulator",
		Long: `partialamm drives two-asset constant-product reserve pools through scripted
trades and prints how reserves and prices move.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")
	flags.StringVar(&a.logFile, "log-file", "", "append logs to this file instead of stderr")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print pool metrics in prometheus text format when done")
	flags.BoolVar(&a.noColor, "no-color", false, "disable ANSI colors")

	rootCmd.AddCommand(
		newRunCmd(a),
		newDemoCmd(a),
		newQuoteCmd(a),
	)
	// PersistentPostRunE is skipped when RunE fails; metrics and the log
	// file must be handled either way.
	for _, cmd := range rootCmd.Commands() {
		cmd.RunE = a.withTeardown(cmd.RunE)
	}
	return rootCmd
}

func (a *app) setup(stderr io.Writer) error {
	w := stderr
	a.closeLog = func() error { return nil }
	if a.logFile != "" {
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
		a.closeLog = f.Close
	}

	logger, err := newLogger(w, a.logLevel, a.logFormat)
	if err != nil {
		a.closeLog()
		return err
	}
	a.logger = logger
	a.registry = prometheus.NewRegistry()
	a.metrics = partialamm.NewMetrics(a.registry)
	return nil
}

// withTeardown runs fn and then tears down, whether or not fn failed.
func (a *app) withTeardown(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if tdErr := a.teardown(cmd.OutOrStdout()); tdErr != nil {
			return errors.Join(err, tdErr)
		}
		return err
	}
}

func (a *app) teardown(stdout io.Writer) error {
	defer a.closeLog()
	if !a.showMetrics {
		return nil
	}

	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	a.header(stdout, "METRICS")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(stdout, mf); err != nil {
			return err
		}
	}
	return nil
}

// header prints a styled section header.
func (a *app) header(w io.Writer, title string) {
	if a.noColor {
		fmt.Fprintln(w, "\n:: "+title+" ::")
		return
	}
	fmt.Fprintln(w, "\n"+Bold+Cyan+":: "+title+" ::"+Reset)
}

// newLogger builds a slog.Logger writing to w. Unknown levels fall back to info.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
