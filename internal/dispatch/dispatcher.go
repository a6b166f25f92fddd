// Package dispatch announces a completed dataset to rendering collaborators.
//
// Each load cycle gets its own Cycle; Announce fires at most once per cycle,
// closes the cycle's Ready channel and invokes every section renderer whose
// slot is installed, whose dataset entry is present and whose capability flag
// is on. Sections failing either condition are skipped silently.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"reportdash/internal/loader"
	"reportdash/internal/trace"
)

// ErrAlreadyAnnounced is returned by a second Announce on the same cycle.
var ErrAlreadyAnnounced = errors.New("dataset already announced for this load cycle")

// Skip reasons recorded in Announcement.Skipped.
const (
	SkipNoRenderer = "no renderer"
	SkipNoData     = "no data"
	SkipDisabled   = "disabled"
)

// Announcement is the result of one dispatch.
type Announcement struct {
	CycleID  string
	Dataset  *loader.Dataset
	IsSample bool
	Rendered []Section
	Skipped  map[Section]string
}

// Dispatcher holds the renderer slots and capability flags shared by cycles.
type Dispatcher struct {
	renderers Renderers
	caps      Capabilities
	pub       EventPublisher
	trace     *trace.Collector
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPublisher sets the event sink for announcements.
func WithPublisher(p EventPublisher) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.pub = p
		}
	}
}

// WithTrace records render and skip decisions in c.
func WithTrace(c *trace.Collector) Option {
	return func(d *Dispatcher) { d.trace = c }
}

// New constructs a Dispatcher. A nil caps disables every section.
func New(r Renderers, caps Capabilities, opts ...Option) *Dispatcher {
	d := &Dispatcher{renderers: r, caps: caps, pub: noopPublisher{}}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Publisher returns the event sink.
func (d *Dispatcher) Publisher() EventPublisher { return d.pub }

// Cycle is the single-fire announcement for one load cycle.
type Cycle struct {
	d     *Dispatcher
	id    string
	mu    sync.Mutex
	fired bool
	ready chan struct{}
	ann   Announcement
}

// NewCycle starts a new announcement scope.
func (d *Dispatcher) NewCycle(id string) *Cycle {
	return &Cycle{d: d, id: id, ready: make(chan struct{})}
}

// ID returns the cycle identifier.
func (c *Cycle) ID() string { return c.id }

// Ready is closed once the cycle has announced.
func (c *Cycle) Ready() <-chan struct{} { return c.ready }

// Result returns the announcement once Ready is closed.
func (c *Cycle) Result() (Announcement, bool) {
	select {
	case <-c.ready:
	default:
		return Announcement{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ann, true
}

// Announce hands ds to the renderers. Renderer errors do not stop the other
// sections; they are returned joined. A second call returns
// ErrAlreadyAnnounced and renders nothing.
func (c *Cycle) Announce(ctx context.Context, ds *loader.Dataset, isSample bool) (Announcement, error) {
	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		c.d.trace.Logf("cycle %s: duplicate announcement ignored", c.id)
		return Announcement{}, ErrAlreadyAnnounced
	}
	c.fired = true
	c.mu.Unlock()

	d := c.d
	ann := Announcement{CycleID: c.id, Dataset: ds, IsSample: isSample, Skipped: map[Section]string{}}
	var errs []error
	for _, spec := range Sections {
		r := d.renderers.For(spec.Section)
		data := ds.Section(spec.Key)
		switch {
		case !d.caps.Enabled(spec.Section):
			ann.Skipped[spec.Section] = SkipDisabled
		case data == nil && !anyPresent(ds, spec.Companions):
			ann.Skipped[spec.Section] = SkipNoData
		case r == nil:
			ann.Skipped[spec.Section] = SkipNoRenderer
		}
		if reason, skipped := ann.Skipped[spec.Section]; skipped {
			d.trace.Logf("section %s skipped: %s", spec.Section, reason)
			continue
		}
		in := SectionInput{CycleID: c.id, Section: spec.Section, Data: data, IsSample: isSample}
		for _, k := range spec.Companions {
			if v := ds.Section(k); v != nil {
				if in.Extra == nil {
					in.Extra = map[string]any{}
				}
				in.Extra[k] = v
			}
		}
		if err := r.Render(ctx, in); err != nil {
			d.trace.Logf("section %s render failed: %v", spec.Section, err)
			errs = append(errs, fmt.Errorf("render %s: %w", spec.Section, err))
			continue
		}
		ann.Rendered = append(ann.Rendered, spec.Section)
	}

	rendered := make([]string, 0, len(ann.Rendered))
	for _, s := range ann.Rendered {
		rendered = append(rendered, string(s))
	}
	d.pub.Publish(Event{Name: EventDatasetReady, CycleID: c.id, Fields: map[string]any{
		"is_sample": isSample,
		"ok":        ds.OKCount(),
		"failed":    ds.FailedCount(),
		"rendered":  rendered,
	}})
	d.trace.Logf("cycle %s announced: %d sections rendered, sample=%t", c.id, len(ann.Rendered), isSample)

	c.mu.Lock()
	c.ann = ann
	c.mu.Unlock()
	close(c.ready)
	return ann, errors.Join(errs...)
}

func anyPresent(ds *loader.Dataset, keys []string) bool {
	for _, k := range keys {
		if ds.Section(k) != nil {
			return true
		}
	}
	return false
}
