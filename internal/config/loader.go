package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"reportdash/internal/detect"
	"reportdash/internal/dispatch"
	"reportdash/internal/loader"
)

// CORS mirrors the HTTP layer's opt-in CORS settings.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// Resources maps a report name to its location (path, file:// or http(s) URL).
	Resources map[string]string `json:"resources" yaml:"resources" toml:"resources"`
	// Sections holds the per-section enabled flags; unspecified sections are on.
	Sections map[string]bool `json:"sections" yaml:"sections" toml:"sections"`
	// Durations are Go duration strings ("5s"); empty disables.
	FetchTimeout    string         `json:"fetch_timeout" yaml:"fetch_timeout" toml:"fetch_timeout"`
	RefreshInterval string         `json:"refresh_interval" yaml:"refresh_interval" toml:"refresh_interval"`
	TraceCapacity   *int           `json:"trace_capacity" yaml:"trace_capacity" toml:"trace_capacity"`
	Watch           bool           `json:"watch" yaml:"watch" toml:"watch"`
	SampleQueries   []detect.Query `json:"sample_queries" yaml:"sample_queries" toml:"sample_queries"`
	CORS            CORS           `json:"cors" yaml:"cors" toml:"cors"`
}

// Defaults applied by WithDefaults.
const (
	DefaultAddr       = ":8080"
	DefaultLogLevel   = "info"
	DefaultReportsDir = "reports"
)

// DefaultResources are the report artifacts the pipeline publishes.
var DefaultResources = []string{"coverage", "quality", "gaps", "validation", "functional", "history"}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// WithDefaults fills unspecified fields.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if len(c.Resources) == 0 {
		c.Resources = make(map[string]string, len(DefaultResources))
		for _, n := range DefaultResources {
			c.Resources[n] = filepath.Join(DefaultReportsDir, n+".json")
		}
	}
	return c
}

// ApplyEnv overrides fields from REPORTDASH_* environment variables.
func (c Config) ApplyEnv() Config {
	if v := os.Getenv("REPORTDASH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("REPORTDASH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return c
}

// Descriptors returns the resources sorted by name.
func (c Config) Descriptors() []loader.Descriptor {
	names := make([]string, 0, len(c.Resources))
	for n := range c.Resources {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]loader.Descriptor, 0, len(names))
	for _, n := range names {
		out = append(out, loader.Descriptor{Name: n, Location: c.Resources[n]})
	}
	return out
}

// Capabilities returns the section flags; sections not mentioned are enabled.
func (c Config) Capabilities() dispatch.Capabilities {
	caps := dispatch.AllEnabled()
	for name, on := range c.Sections {
		caps[dispatch.Section(name)] = on
	}
	return caps
}

// FetchTimeoutDuration parses FetchTimeout; empty means no timeout.
func (c Config) FetchTimeoutDuration() (time.Duration, error) {
	return parseDuration("fetch_timeout", c.FetchTimeout)
}

// RefreshIntervalDuration parses RefreshInterval; empty disables refresh.
func (c Config) RefreshIntervalDuration() (time.Duration, error) {
	return parseDuration("refresh_interval", c.RefreshInterval)
}

// TraceCapacityOrDefault returns the configured trace retention.
func (c Config) TraceCapacityOrDefault(def int) int {
	if c.TraceCapacity == nil {
		return def
	}
	return *c.TraceCapacity
}

func parseDuration(field, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}

// Validate reports configuration errors before anything is started.
func (c Config) Validate() error {
	if err := loader.Validate(c.Descriptors()); err != nil {
		return err
	}
	for name := range c.Sections {
		if !knownSection(name) {
			return fmt.Errorf("sections: unknown section %q", name)
		}
	}
	if _, err := c.FetchTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.RefreshIntervalDuration(); err != nil {
		return err
	}
	if c.TraceCapacity != nil && *c.TraceCapacity < 0 {
		return fmt.Errorf("trace_capacity: must not be negative")
	}
	if _, err := detect.QuerySignatures(c.SampleQueries); err != nil {
		return err
	}
	return nil
}

func knownSection(name string) bool {
	for _, s := range dispatch.Sections {
		if string(s.Section) == name {
			return true
		}
	}
	return false
}
