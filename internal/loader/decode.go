package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"reportdash/internal/common/fsutil"
)

// ErrEmptyDocument is returned for blank or null documents.
var ErrEmptyDocument = errors.New("empty document")

// Format identifies the encoding of a report document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks a decoder from the location's extension; JSON is the default.
func FormatOf(location string) Format {
	p := location
	if _, ok, _ := fsutil.LocalPath(location); !ok {
		if u, err := url.Parse(location); err == nil {
			p = u.Path
		}
	}
	ext := strings.ToLower(path.Ext(filepath.ToSlash(p)))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Decode parses b according to the location's format and normalises the
// result into a JSON-shaped tree: map[string]any, []any, string, float64,
// bool. A null or blank document is an error.
func Decode(location string, b []byte) (any, error) {
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, ErrEmptyDocument
	}
	var v any
	switch f := FormatOf(location); f {
	case FormatYAML:
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		v = m
	default:
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	if v == nil {
		return nil, ErrEmptyDocument
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = normalize(x)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[fmt.Sprint(k)] = normalize(x)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case toml.LocalDate:
		return t.String()
	case toml.LocalDateTime:
		return t.String()
	case toml.LocalTime:
		return t.String()
	default:
		return v
	}
}
