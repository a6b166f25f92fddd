package detect

import (
	"math"
	"time"

	"github.com/mitchellh/mapstructure"

	"reportdash/internal/loader"
)

// DefaultSamplePercent is the total coverage reported by the bundled example report.
const DefaultSamplePercent = 75.8

// DefaultReferencePaths are the file entries of the bundled example coverage report.
var DefaultReferencePaths = []string{
	"src/calculator.py",
	"src/utils/helpers.py",
	"src/models/user.py",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type historySection struct {
	Dates []any `mapstructure:"dates"`
}

type coverageTotals struct {
	PercentCovered *float64 `mapstructure:"percent_covered"`
}

// epochMillisCutoff separates epoch seconds from epoch milliseconds; 1e12
// seconds is tens of thousands of years away.
const epochMillisCutoff = 1e12

// decodeSection decodes ds[name] into out; false when absent or mis-shaped.
func decodeSection(ds *loader.Dataset, name string, out any) bool {
	raw, ok := ds.Section(name).(map[string]any)
	if !ok {
		return false
	}
	return mapstructure.Decode(raw, out) == nil
}

// coverageField returns coverage[key], or nil when coverage is not an object.
// Each coverage signature reads only its own field so a mis-shaped sibling
// cannot hide a match.
func coverageField(ds *loader.Dataset, key string) any {
	raw, ok := ds.Section("coverage").(map[string]any)
	if !ok {
		return nil
	}
	return raw[key]
}

// ParseDate accepts RFC3339 and the plain date/time layouts reports use.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// historyDate reads one history.dates entry: a date string in any layout
// ParseDate accepts, or a number of epoch seconds (epoch milliseconds when at
// or above 1e12).
func historyDate(v any) (time.Time, bool) {
	var n float64
	switch t := v.(type) {
	case string:
		return ParseDate(t)
	case float64:
		n = t
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	default:
		return time.Time{}, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	if n >= epochMillisCutoff {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Unix(int64(n), 0).UTC(), true
}

// FutureHistoryDates matches when history.dates holds a date after now.
func FutureHistoryDates(now func() time.Time) Signature {
	return Signature{
		Name: "history-future-date",
		Match: func(ds *loader.Dataset) bool {
			var h historySection
			if !decodeSection(ds, "history", &h) {
				return false
			}
			cutoff := now()
			for _, v := range h.Dates {
				if t, ok := historyDate(v); ok && t.After(cutoff) {
					return true
				}
			}
			return false
		},
	}
}

// ReferenceCoverageFiles matches when coverage.files lists every one of paths.
// The listing may be an object keyed by path, a list of paths, or a list of
// objects carrying "path" or "filename".
func ReferenceCoverageFiles(paths ...string) Signature {
	return Signature{
		Name: "coverage-reference-files",
		Match: func(ds *loader.Dataset) bool {
			if len(paths) == 0 {
				return false
			}
			listed := filePaths(coverageField(ds, "files"))
			for _, p := range paths {
				if _, ok := listed[p]; !ok {
					return false
				}
			}
			return true
		},
	}
}

func filePaths(files any) map[string]struct{} {
	out := map[string]struct{}{}
	switch t := files.(type) {
	case map[string]any:
		for p := range t {
			out[p] = struct{}{}
		}
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case string:
				out[it] = struct{}{}
			case map[string]any:
				for _, key := range []string{"path", "filename"} {
					if s, ok := it[key].(string); ok {
						out[s] = struct{}{}
					}
				}
			}
		}
	}
	return out
}

// ConstantCoveragePercent matches when coverage.totals.percent_covered equals want exactly.
func ConstantCoveragePercent(want float64) Signature {
	return Signature{
		Name: "coverage-constant-percent",
		Match: func(ds *loader.Dataset) bool {
			totals, ok := coverageField(ds, "totals").(map[string]any)
			if !ok {
				return false
			}
			var c coverageTotals
			if mapstructure.Decode(totals, &c) != nil {
				return false
			}
			return c.PercentCovered != nil && *c.PercentCovered == want
		},
	}
}
