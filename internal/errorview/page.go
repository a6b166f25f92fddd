// Package errorview is the fallback surface shown when a load cycle
// retrieved nothing. The primary message is fixed and never embeds raw error
// text; the full diagnostic trace sits behind a disclosure toggle.
package errorview

import (
	"html/template"
	"io"
	"strings"

	"reportdash/internal/trace"
)

// Message is the fixed headline of the failure page.
const Message = "Unable to load dashboard data. None of the configured reports could be retrieved."

// Hint tells the reader where to look next.
const Hint = "Check that the report pipeline has run and that the configured locations are reachable."

// Page is a snapshot of the failure state.
type Page struct {
	Message string
	Hint    string
	Entries []trace.Entry
	Dropped uint64
}

// New captures the current trace contents.
func New(c *trace.Collector) Page {
	return Page{Message: Message, Hint: Hint, Entries: c.Entries(), Dropped: c.Dropped()}
}

// TraceText renders the trace verbatim.
func (p Page) TraceText() string {
	return trace.Format(p.Entries)
}

// Markdown renders the page for terminals; the trace is a fenced block.
func (p Page) Markdown() string {
	var b strings.Builder
	b.WriteString("# Dashboard unavailable\n\n")
	b.WriteString(p.Message + "\n\n")
	b.WriteString(p.Hint + "\n\n")
	b.WriteString("## Debug trace\n\n```text\n")
	b.WriteString(p.TraceText())
	b.WriteString("```\n")
	return b.String()
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Dashboard unavailable</title>
<style>
body{font-family:system-ui,sans-serif;background:#0d1117;color:#c9d1d9;margin:24px}
.error{background:#3c1618;border:1px solid #f85149;padding:12px 16px;border-radius:6px}
details{margin-top:16px}
summary{cursor:pointer;color:#58a6ff}
pre{background:#161b22;border:1px solid #30363d;padding:8px;border-radius:4px;overflow:auto;font-size:12px}
</style>
</head>
<body>
<div class="error" role="alert">
<h1>Dashboard unavailable</h1>
<p>{{.Message}}</p>
<p>{{.Hint}}</p>
</div>
<details id="debug-trace">
<summary>Show debug trace ({{len .Entries}} entries{{if .Dropped}}, {{.Dropped}} older entries dropped{{end}})</summary>
<pre>{{.Trace}}</pre>
</details>
</body>
</html>
`

var pageTmpl = template.Must(template.New("error").Parse(pageHTML))

// WriteHTML renders the failure page.
func (p Page) WriteHTML(w io.Writer) error {
	return pageTmpl.Execute(w, struct {
		Page
		Trace string
	}{p, p.TraceText()})
}
