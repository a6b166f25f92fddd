package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportdash/internal/errorview"
	"reportdash/pkg/types"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct{ in string; want []string }{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) { t.Fatalf("%q -> %v, want %v", c.in, got, c.want) }
		for i := range got {
			if got[i] != c.want[i] { t.Fatalf("%q -> %v, want %v", c.in, got, c.want) }
		}
	}
}

// writeReports writes the standard report files into dir and a YAML config
// pointing at them. Names in missing are configured but not written.
func writeReports(t *testing.T, dir string, missing ...string) string {
	t.Helper()
	docs := map[string]string{
		"coverage":   `{"totals":{"percent_covered":83.2}}`,
		"quality":    `{"score":9}`,
		"gaps":       `["retry path untested"]`,
		"validation": `{"passed":10,"failed":0}`,
		"functional": `{"features":4}`,
		"history":    `{"dates":["2024-05-01"]}`,
	}
	skip := map[string]bool{}
	for _, m := range missing {
		skip[m] = true
	}
	var cfg strings.Builder
	cfg.WriteString("log_level: error\nresources:\n")
	for name, doc := range docs {
		p := filepath.Join(dir, name+".json")
		if !skip[name] {
			require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
		}
		fmt.Fprintf(&cfg, "  %s: %q\n", name, p)
	}
	cfgPath := filepath.Join(dir, "reportdash.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg.String()), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck_PrintsBoard(t *testing.T) {
	cfg := writeReports(t, t.TempDir(), "gaps")
	out, err := run(t, "check", "--config", cfg, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "# Test dashboard")
	assert.Contains(t, out, "83.2%")
	assert.NotContains(t, out, "Sample data")
}

func TestCheck_JSON(t *testing.T) {
	cfg := writeReports(t, t.TempDir())
	out, err := run(t, "check", "--config", cfg, "--json", "--disable", "validation")
	require.NoError(t, err)
	var board types.BoardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	var sections []string
	for _, p := range board.Panels {
		sections = append(sections, p.Section)
	}
	assert.ElementsMatch(t, []string{"coverage", "quality", "functional", "history"}, sections)
}

func TestCheck_TotalFailureExitsOne(t *testing.T) {
	dir := t.TempDir()
	cfg := writeReports(t, dir, "coverage", "quality", "gaps", "validation", "functional", "history")
	out, err := run(t, "check", "--config", cfg, "--raw")
	require.Error(t, err)
	assert.Equal(t, exitNoData, exitCode(err))
	assert.Contains(t, out, errorview.Message)
	assert.Equal(t, 6, strings.Count(out, "failed to load "))
}

func TestCheck_ConfigErrorExitsTwo(t *testing.T) {
	cfg := writeReports(t, t.TempDir())
	_, err := run(t, "check", "--config", cfg, "--disable", "charts")
	require.Error(t, err)
	assert.Equal(t, exitConfigError, exitCode(err))

	_, err = run(t, "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitConfigError, exitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "reportdash dev"), out)
}
