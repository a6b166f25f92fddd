package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reportdash/internal/dashboard"
	"reportdash/internal/httpapi"
)

type serveOptions struct {
	addr          string
	watch         bool
	refresh       time.Duration
	reloadTimeout time.Duration
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the dashboard over HTTP",
		Example: "  reportdash serve --config reportdash.yaml --watch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8080 (defaults REPORTDASH_ADDR or config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload when a file-based report changes")
	cmd.Flags().DurationVar(&opts.refresh, "refresh", 0, "Reload periodically at this interval (0 uses config, disabled by default)")
	cmd.Flags().DurationVar(&opts.reloadTimeout, "reload-timeout", 0, "Upper bound for a POST /api/reload cycle (0 disables)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, opts *serveOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = opts.watch
	}
	interval, err := cfg.RefreshIntervalDuration()
	if err != nil {
		return &exitError{code: exitConfigError, err: err}
	}
	if opts.refresh > 0 {
		interval = opts.refresh
	}

	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetBaseContext(ctx)
	httpapi.SetReloadTimeout(opts.reloadTimeout)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Int("resources", len(svc.Resources())).Msg("reportdash listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		if _, err := svc.Reload(ctx); err != nil {
			log.Error().Err(err).Msg("initial load failed")
		}
		go svc.RunRefresh(ctx, interval)
		if cfg.Watch {
			if err := svc.Watch(ctx, dashboard.DefaultDebounce); err != nil {
				log.Error().Err(err).Msg("watch stopped")
			}
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
