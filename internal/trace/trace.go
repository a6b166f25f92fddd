// Package trace is the append-only diagnostic log shared by every stage of a
// load cycle. It never panics and is safe for concurrent producers; entries
// are kept in call order and, when a capacity is set, the oldest entries are
// evicted first.
package trace

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the retention used when callers do not pick one.
const DefaultCapacity = 1000

// TimeLayout is the timestamp format used by String.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry is one diagnostic line.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Collector accumulates entries across load cycles.
type Collector struct {
	mu       sync.Mutex
	buf      []Entry
	start    int
	capacity int
	dropped  uint64
	now      func() time.Time
	log      zerolog.Logger
}

// New returns a collector keeping at most capacity entries. Zero or a
// negative capacity keeps everything.
func New(capacity int) *Collector {
	if capacity < 0 {
		capacity = 0
	}
	return &Collector{capacity: capacity, now: time.Now, log: zerolog.Nop()}
}

// SetLogger mirrors every entry to l at debug level.
func (c *Collector) SetLogger(l zerolog.Logger) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.log = l
	c.mu.Unlock()
}

// SetClock replaces the time source; used by tests.
func (c *Collector) SetClock(now func() time.Time) {
	if c == nil || now == nil {
		return
	}
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Log appends msg.
func (c *Collector) Log(msg string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	e := Entry{Time: c.now(), Message: msg}
	if c.capacity == 0 || len(c.buf) < c.capacity {
		c.buf = append(c.buf, e)
	} else {
		c.buf[c.start] = e
		c.start = (c.start + 1) % c.capacity
		c.dropped++
	}
	l := c.log
	c.mu.Unlock()
	l.Debug().Str("component", "trace").Msg(msg)
}

// Logf appends a formatted message.
func (c *Collector) Logf(format string, args ...any) {
	if c == nil {
		return
	}
	c.Log(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the retained entries, oldest first.
func (c *Collector) Entries() []Entry {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.buf))
	out = append(out, c.buf[c.start:]...)
	out = append(out, c.buf[:c.start]...)
	return out
}

// Len reports the number of retained entries.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Dropped reports how many entries were evicted by the retention limit.
func (c *Collector) Dropped() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// String renders the retained entries one per line, verbatim.
func (c *Collector) String() string {
	return Format(c.Entries())
}

// Format renders entries one per line as "<timestamp> <message>".
func Format(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Time.Format(TimeLayout))
		b.WriteByte(' ')
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
