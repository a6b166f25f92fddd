package errorview

import (
	"bytes"
	"strings"
	"testing"

	"reportdash/internal/trace"
)

func TestPage_HTMLKeepsRawErrorsBehindToggle(t *testing.T) {
	tr := trace.New(0)
	tr.Log("failed to load coverage: dial tcp 10.0.0.1:80: connect: connection refused <b>")
	p := New(tr)
	if p.Message != Message {
		t.Fatalf("message=%q", p.Message)
	}
	var buf bytes.Buffer
	if err := p.WriteHTML(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	alert := out[strings.Index(out, `role="alert"`):strings.Index(out, "</div>")]
	if strings.Contains(alert, "connection refused") {
		t.Fatalf("primary message leaks raw error: %s", alert)
	}
	details := out[strings.Index(out, "<details"):]
	if !strings.Contains(details, "connection refused &lt;b&gt;") {
		t.Fatalf("trace should be shown verbatim (escaped) inside the disclosure: %s", details)
	}
	if !strings.Contains(details, "Show debug trace (1 entries)") {
		t.Fatalf("toggle label: %s", details)
	}
}

func TestPage_DroppedEntriesAreMentioned(t *testing.T) {
	tr := trace.New(1)
	tr.Log("a")
	tr.Log("b")
	var buf bytes.Buffer
	if err := New(tr).WriteHTML(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "1 older entries dropped") {
		t.Fatalf("missing dropped note: %s", buf.String())
	}
}

func TestPage_Markdown(t *testing.T) {
	tr := trace.New(0)
	tr.Log("failed to load history: boom")
	tr.Log("failed to load coverage: boom")
	md := New(tr).Markdown()
	if !strings.Contains(md, Message) || !strings.Contains(md, "```text\n") {
		t.Fatalf("markdown: %s", md)
	}
	if strings.Count(md, "failed to load") != 2 {
		t.Fatalf("expected both failures in trace: %s", md)
	}
}
