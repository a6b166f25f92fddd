// Package render holds the built-in section renderers. They turn each
// announced section into a summary panel on a Board, which the HTTP surface
// and the CLI display.
package render

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"reportdash/internal/dispatch"
	"reportdash/pkg/types"
)

// Board collects the panels of the most recent announcement.
type Board struct {
	mu       sync.RWMutex
	cycleID  string
	isSample bool
	panels   map[dispatch.Section]types.Panel
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{panels: map[dispatch.Section]types.Panel{}}
}

// Begin clears the board for a new load cycle.
func (b *Board) Begin(cycleID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cycleID = cycleID
	b.isSample = false
	b.panels = map[dispatch.Section]types.Panel{}
}

func (b *Board) put(in dispatch.SectionInput, p types.Panel) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if in.CycleID != b.cycleID {
		return fmt.Errorf("stale render for cycle %s (board is on %s)", in.CycleID, b.cycleID)
	}
	b.isSample = in.IsSample
	b.panels[in.Section] = p
	return nil
}

func (b *Board) slot(summarize func(in dispatch.SectionInput) types.Panel) dispatch.SectionRenderer {
	return dispatch.RendererFunc(func(ctx context.Context, in dispatch.SectionInput) error {
		return b.put(in, summarize(in))
	})
}

// Renderers returns one renderer per section, each writing to b.
func (b *Board) Renderers() dispatch.Renderers {
	return dispatch.Renderers{
		Coverage: b.slot(func(in dispatch.SectionInput) types.Panel { return summarizeCoverage(in.Data) }),
		Quality:  b.slot(func(in dispatch.SectionInput) types.Panel { return summarizeQuality(in.Data, in.Extra) }),
		Functional: b.slot(func(in dispatch.SectionInput) types.Panel {
			return summarizeGeneric(string(dispatch.SectionFunctional), in.Data)
		}),
		Validation: b.slot(func(in dispatch.SectionInput) types.Panel {
			return summarizeGeneric(string(dispatch.SectionValidation), in.Data)
		}),
		History: b.slot(func(in dispatch.SectionInput) types.Panel { return summarizeHistory(in.Data) }),
	}
}

// Panels returns the rendered panels in section order.
func (b *Board) Panels() []types.Panel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.Panel, 0, len(b.panels))
	for _, s := range dispatch.Sections {
		if p, ok := b.panels[s.Section]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns the board as an API payload.
func (b *Board) Snapshot() types.BoardResponse {
	panels := b.Panels()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return types.BoardResponse{CycleID: b.cycleID, IsSample: b.isSample, Panels: panels}
}

// SampleNotice is shown above boards built from placeholder data.
const SampleNotice = "These reports look like sample data, not results from a real pipeline run."

// Markdown renders a board snapshot for terminals.
func Markdown(snap types.BoardResponse) string {
	var sb strings.Builder
	sb.WriteString("# Test dashboard\n\n")
	if snap.IsSample {
		sb.WriteString("> **Sample data.** " + SampleNotice + "\n\n")
	}
	if len(snap.Panels) == 0 {
		sb.WriteString("_No sections to display._\n")
	}
	for _, p := range snap.Panels {
		fmt.Fprintf(&sb, "## %s\n\n| Metric | Value |\n|---|---|\n", p.Title)
		for _, m := range p.Metrics {
			fmt.Fprintf(&sb, "| %s | %s |\n", escapeCell(m.Label), escapeCell(m.Value))
		}
		sb.WriteString("\n")
		for _, it := range p.Items {
			fmt.Fprintf(&sb, "- %s\n", it)
		}
		if len(p.Items) > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func escapeCell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

const boardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Test dashboard</title>
<style>
body{font-family:system-ui,sans-serif;background:#0d1117;color:#c9d1d9;margin:24px}
.banner{background:#3d2e00;border:1px solid #9e6a03;padding:8px 12px;border-radius:6px;margin-bottom:16px}
.cards{display:flex;gap:12px;flex-wrap:wrap}
.card{background:#161b22;border:1px solid #30363d;border-radius:6px;padding:12px 16px;min-width:220px}
.card h2{font-size:14px;text-transform:uppercase;letter-spacing:.5px;color:#58a6ff;margin:0 0 8px}
.card td{padding:2px 8px 2px 0;font-size:13px}
.card ul{margin:8px 0 0;padding-left:18px;font-size:12px;color:#8b949e}
</style>
</head>
<body>
<h1>Test dashboard</h1>
{{if .IsSample}}<div class="banner">Sample data. {{.Notice}}</div>{{end}}
<div class="cards">
{{range .Panels}}<div class="card" id="panel-{{.Section}}">
<h2>{{.Title}}</h2>
<table>{{range .Metrics}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</table>
{{if .Items}}<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>
{{else}}<p>No sections to display.</p>
{{end}}</div>
</body>
</html>
`

var boardTmpl = template.Must(template.New("board").Parse(boardHTML))

// WriteHTML renders a board snapshot as a standalone page.
func WriteHTML(w io.Writer, snap types.BoardResponse) error {
	return boardTmpl.Execute(w, struct {
		types.BoardResponse
		Notice string
	}{snap, SampleNotice})
}
