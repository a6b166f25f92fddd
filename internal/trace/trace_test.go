package trace

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func TestCollector_OrderAndFormat(t *testing.T) {
	c := New(0)
	c.SetClock(fixedClock())
	c.Log("first")
	c.Logf("second %d", 2)
	got := c.Entries()
	if len(got) != 2 || got[0].Message != "first" || got[1].Message != "second 2" {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if !got[0].Time.Before(got[1].Time) {
		t.Fatalf("entries out of order: %+v", got)
	}
	s := c.String()
	if !strings.Contains(s, "2024-05-01T12:00:01.000Z first\n") {
		t.Fatalf("format: %q", s)
	}
}

func TestCollector_RingBufferEvictsOldest(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.Logf("m%d", i)
	}
	got := c.Entries()
	if len(got) != 3 {
		t.Fatalf("len=%d", len(got))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if got[i].Message != want {
			t.Fatalf("entry %d = %q, want %q", i, got[i].Message, want)
		}
	}
	if c.Dropped() != 2 {
		t.Fatalf("dropped=%d", c.Dropped())
	}
}

func TestCollector_NilReceiverIsSafe(t *testing.T) {
	var c *Collector
	c.Log("x")
	c.Logf("%s", "y")
	c.SetLogger(zerolog.Nop())
	if c.Entries() != nil || c.Len() != 0 || c.Dropped() != 0 || c.String() != "" {
		t.Fatalf("nil collector should be empty")
	}
}

func TestCollector_ConcurrentProducers(t *testing.T) {
	c := New(0)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Log(fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()
	if c.Len() != 800 {
		t.Fatalf("len=%d", c.Len())
	}
	entries := c.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].Time.Before(entries[i-1].Time) {
			t.Fatalf("entry %d precedes its predecessor", i)
		}
	}
}

func TestCollector_MirrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(0)
	c.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	c.Log("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Fatalf("logger output: %s", buf.String())
	}
}
