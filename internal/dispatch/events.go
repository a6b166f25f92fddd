package dispatch

import (
	"sync"

	"github.com/rs/zerolog"
)

// Event names published by the dashboard.
const (
	EventDatasetReady = "dataset_ready"
	EventLoadFailed   = "load_failed"
)

// Event represents a load-cycle notification.
// Minimal and stable: name + cycle ID and optional fields via key/values.
type Event struct {
	Name    string
	CycleID string
	Fields  map[string]any
}

// EventPublisher receives events from the dispatcher. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Count returns how many events named name were published.
func (p *MemoryPublisher) Count(name string) int {
	n := 0
	for _, e := range p.Events() {
		if e.Name == name {
			n++
		}
	}
	return n
}

// LogPublisher writes events to a zerolog logger.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Log.Info().Str("event", e.Name).Str("cycle", e.CycleID)
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("dashboard event")
}
