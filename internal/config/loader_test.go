package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"reportdash/internal/dispatch"
	"reportdash/internal/loader"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: ":9999"
log_level: debug
resources:
  coverage: reports/coverage.json
  history: https://ci.example/history.json
sections:
  validation: false
fetch_timeout: 5s
trace_capacity: 50
watch: true
sample_queries:
  - name: demo
    query: .quality.score == 42
cors:
  enabled: true
  allowed_origins: ["*"]
`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || len(cfg.Resources) != 2 || !cfg.Watch || !cfg.CORS.Enabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.SampleQueries) != 1 || cfg.SampleQueries[0].Name != "demo" {
		t.Fatalf("sample queries: %+v", cfg.SampleQueries)
	}
	if err := cfg.Validate(); err != nil { t.Fatalf("validate: %v", err) }
	if d, _ := cfg.FetchTimeoutDuration(); d != 5*time.Second { t.Fatalf("timeout=%s", d) }
	if cfg.TraceCapacityOrDefault(1000) != 50 { t.Fatalf("trace capacity") }
	caps := cfg.Capabilities()
	if caps.Enabled(dispatch.SectionValidation) || !caps.Enabled(dispatch.SectionCoverage) {
		t.Fatalf("caps: %+v", caps)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","resources":{"gaps":"g.json","coverage":"c.json"},"refresh_interval":"1m","trace_capacity":0}`)
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	want := []loader.Descriptor{{Name: "coverage", Location: "c.json"}, {Name: "gaps", Location: "g.json"}}
	got := cfg.Descriptors()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("descriptors: %+v", got)
	}
	if r, _ := cfg.RefreshIntervalDuration(); r != time.Minute { t.Fatalf("refresh=%s", r) }
	if cfg.TraceCapacityOrDefault(1000) != 0 { t.Fatalf("explicit zero capacity must be kept") }
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nlog_level=\"warn\"\n[resources]\nquality=\"q.toml\"\n[sections]\nhistory=false\n")
	cfg, err := Load(p)
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Addr != ":8081" || cfg.LogLevel != "warn" || cfg.Resources["quality"] != "q.toml" || cfg.Sections["history"] {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil { t.Fatalf("expected error on empty path") }
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil { t.Fatalf("expected unsupported extension error") }
}

func TestWithDefaultsAndEnv(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Addr != DefaultAddr || cfg.LogLevel != DefaultLogLevel || len(cfg.Resources) != len(DefaultResources) {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Resources["history"] != filepath.Join("reports", "history.json") {
		t.Fatalf("history location: %s", cfg.Resources["history"])
	}
	if cfg.TraceCapacityOrDefault(1000) != 1000 { t.Fatalf("default capacity") }
	if d, _ := cfg.FetchTimeoutDuration(); d != 0 { t.Fatalf("timeout should default to none") }

	t.Setenv("REPORTDASH_ADDR", ":1234")
	t.Setenv("REPORTDASH_LOG_LEVEL", "error")
	cfg = cfg.ApplyEnv()
	if cfg.Addr != ":1234" || cfg.LogLevel != "error" {
		t.Fatalf("env: %+v", cfg)
	}
}
