package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"reportdash/internal/config"
	"reportdash/internal/dashboard"
	"reportdash/internal/dispatch"
	"reportdash/internal/trace"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	disable    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "reportdash",
		Short:         "Aggregate CI test reports into a dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults REPORTDASH_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&opts.disable, "disable", "", "Comma-separated sections to disable, e.g. validation,history")

	root.AddCommand(newServeCmd(opts), newCheckCmd(opts), newVersionCmd())
	return root
}

// loadConfig resolves file, environment and flag settings, in that order of
// increasing precedence. Any failure is a configuration error.
func (o *rootOptions) loadConfig() (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, &exitError{code: exitConfigError, err: err}
		}
		cfg = c
	}
	cfg = cfg.WithDefaults().ApplyEnv()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if names := splitCSV(o.disable); len(names) > 0 {
		if cfg.Sections == nil {
			cfg.Sections = map[string]bool{}
		}
		for _, n := range names {
			cfg.Sections[n] = false
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, &exitError{code: exitConfigError, err: err}
	}
	return cfg, nil
}

// newLogger builds the console logger used by the CLI.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Str("svc", "reportdash").Logger()
}

// newService wires the dashboard from a validated config.
func newService(cfg config.Config, log zerolog.Logger) (*dashboard.Service, error) {
	ft, err := cfg.FetchTimeoutDuration()
	if err != nil {
		return nil, &exitError{code: exitConfigError, err: err}
	}
	svc, err := dashboard.New(dashboard.Config{
		Resources:     cfg.Descriptors(),
		Capabilities:  cfg.Capabilities(),
		FetchTimeout:  ft,
		TraceCapacity: cfg.TraceCapacityOrDefault(trace.DefaultCapacity),
		SampleQueries: cfg.SampleQueries,
		Publisher:     dispatch.LogPublisher{Log: log},
		Logger:        log,
	})
	if err != nil {
		return nil, &exitError{code: exitConfigError, err: err}
	}
	return svc, nil
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
