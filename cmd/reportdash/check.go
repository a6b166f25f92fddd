package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reportdash/internal/dashboard"
	"reportdash/internal/render"
)

type checkOptions struct {
	raw  bool
	json bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one load cycle and print the dashboard",
		Long: "Run one load cycle and print the board, or the failure page with its debug trace.\n" +
			"Exits 1 when no report could be loaded and 2 on configuration errors.",
		Example: "  reportdash check --config reportdash.yaml\n  reportdash check --disable validation --raw",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print plain Markdown even on a terminal")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the board as JSON")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	res, err := svc.Reload(cmd.Context())
	if err != nil {
		return &exitError{code: exitConfigError, err: err}
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Failure != nil:
		if err := writeMarkdown(out, res.Failure.Markdown(), opts.raw); err != nil {
			return err
		}
		return &exitError{code: exitNoData, err: dashboard.ErrNoData}
	case opts.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Board)
	default:
		return writeMarkdown(out, render.Markdown(res.Board), opts.raw)
	}
}

// writeMarkdown styles md with glamour when out is a terminal.
func writeMarkdown(out io.Writer, md string, raw bool) error {
	f, ok := out.(*os.File)
	if raw || !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(out, md)
		return err
	}
	width := 100
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
		width = w
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	styled, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(out, styled)
	return err
}
