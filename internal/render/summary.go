package render

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"reportdash/internal/detect"
	"reportdash/pkg/types"
)

const maxItems = 10

var titles = map[string]string{
	"coverage":   "Test coverage",
	"quality":    "Quality & gaps",
	"functional": "Functional coverage",
	"validation": "Validation",
	"history":    "History",
}

// Title returns the display title for a section key.
func Title(section string) string {
	if t, ok := titles[section]; ok {
		return t
	}
	return section
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case []any:
		return fmt.Sprintf("%d items", len(t))
	case map[string]any:
		return fmt.Sprintf("%d entries", len(t))
	default:
		return fmt.Sprint(t)
	}
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}

// genericMetrics lists top-level fields of v in key order.
func genericMetrics(v any) []types.Metric {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]types.Metric, 0, len(keys))
		for _, k := range keys {
			out = append(out, types.Metric{Label: k, Value: formatValue(t[k])})
		}
		return out
	case []any:
		return []types.Metric{{Label: "entries", Value: strconv.Itoa(len(t))}}
	default:
		return []types.Metric{{Label: "value", Value: formatValue(t)}}
	}
}

// itemLabel picks a human label for a list element.
func itemLabel(v any) string {
	if m, ok := v.(map[string]any); ok {
		for _, k := range []string{"description", "name", "title", "id", "path"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return formatValue(v)
}

func listItems(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, min(len(list), maxItems))
	for i, it := range list {
		if i == maxItems {
			out = append(out, fmt.Sprintf("... and %d more", len(list)-maxItems))
			break
		}
		out = append(out, itemLabel(it))
	}
	return out
}

type coverageReport struct {
	Totals struct {
		PercentCovered *float64 `mapstructure:"percent_covered"`
		NumStatements  *float64 `mapstructure:"num_statements"`
		CoveredLines   *float64 `mapstructure:"covered_lines"`
		MissingLines   *float64 `mapstructure:"missing_lines"`
	} `mapstructure:"totals"`
	Files map[string]struct {
		Summary struct {
			PercentCovered *float64 `mapstructure:"percent_covered"`
		} `mapstructure:"summary"`
	} `mapstructure:"files"`
}

func summarizeCoverage(data any) types.Panel {
	p := types.Panel{Section: "coverage", Title: Title("coverage")}
	var rep coverageReport
	if err := mapstructure.Decode(data, &rep); err != nil {
		p.Metrics = genericMetrics(data)
		return p
	}
	t := rep.Totals
	if t.PercentCovered != nil {
		p.Metrics = append(p.Metrics, types.Metric{Label: "Coverage", Value: percent(*t.PercentCovered)})
	}
	for _, m := range []struct {
		label string
		v     *float64
	}{{"Statements", t.NumStatements}, {"Covered lines", t.CoveredLines}, {"Missing lines", t.MissingLines}} {
		if m.v != nil {
			p.Metrics = append(p.Metrics, types.Metric{Label: m.label, Value: formatValue(*m.v)})
		}
	}
	if len(rep.Files) > 0 {
		p.Metrics = append(p.Metrics, types.Metric{Label: "Files", Value: strconv.Itoa(len(rep.Files))})
		type fileCov struct {
			path string
			pct  float64
		}
		var low []fileCov
		for path, f := range rep.Files {
			if f.Summary.PercentCovered != nil {
				low = append(low, fileCov{path, *f.Summary.PercentCovered})
			}
		}
		sort.Slice(low, func(i, j int) bool {
			if low[i].pct != low[j].pct {
				return low[i].pct < low[j].pct
			}
			return low[i].path < low[j].path
		})
		for i, f := range low {
			if i == 5 {
				break
			}
			p.Items = append(p.Items, fmt.Sprintf("%s (%s)", f.path, percent(f.pct)))
		}
	}
	if len(p.Metrics) == 0 {
		p.Metrics = genericMetrics(data)
	}
	return p
}

func summarizeQuality(data any, extra map[string]any) types.Panel {
	p := types.Panel{Section: "quality", Title: Title("quality")}
	if data != nil {
		p.Metrics = genericMetrics(data)
	}
	gaps, ok := extra["gaps"]
	if !ok {
		return p
	}
	switch g := gaps.(type) {
	case []any:
		p.Metrics = append(p.Metrics, types.Metric{Label: "Gaps", Value: strconv.Itoa(len(g))})
		p.Items = listItems(g)
	case map[string]any:
		if list, ok := g["gaps"].([]any); ok {
			p.Metrics = append(p.Metrics, types.Metric{Label: "Gaps", Value: strconv.Itoa(len(list))})
			p.Items = listItems(list)
		} else {
			p.Metrics = append(p.Metrics, types.Metric{Label: "Gaps", Value: formatValue(g)})
		}
	}
	return p
}

type historyReport struct {
	Dates []any `mapstructure:"dates"`
}

func summarizeHistory(data any) types.Panel {
	p := types.Panel{Section: "history", Title: Title("history")}
	var h historyReport
	if err := mapstructure.Decode(data, &h); err != nil || len(h.Dates) == 0 {
		p.Metrics = genericMetrics(data)
		return p
	}
	p.Metrics = append(p.Metrics, types.Metric{Label: "Runs", Value: strconv.Itoa(len(h.Dates))})
	var latest string
	var latestT int64
	for _, d := range h.Dates {
		s, ok := d.(string)
		if !ok {
			continue
		}
		if t, ok := detect.ParseDate(s); ok && (latest == "" || t.Unix() > latestT) {
			latest, latestT = s, t.Unix()
		}
	}
	if latest != "" {
		p.Metrics = append(p.Metrics, types.Metric{Label: "Latest run", Value: latest})
	}
	return p
}

func summarizeGeneric(section string, data any) types.Panel {
	p := types.Panel{Section: section, Title: Title(section), Metrics: genericMetrics(data)}
	if m, ok := data.(map[string]any); ok {
		for _, k := range []string{"failures", "failed_checks", "errors"} {
			if items := listItems(m[k]); len(items) > 0 {
				p.Items = items
				break
			}
		}
	} else {
		p.Items = listItems(data)
	}
	return p
}
