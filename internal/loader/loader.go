// Package loader retrieves every configured report artifact concurrently and
// assembles one Dataset per load cycle.
//
// A cycle waits for all retrievals to settle and lets each one fail on its
// own: a broken or slow resource is recorded as failed and never cancels its
// siblings. Only configuration errors abort a cycle, and they do so before any
// retrieval starts.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reportdash/internal/trace"
)

// Options configures a Loader. Zero values select defaults.
type Options struct {
	Fetcher Fetcher
	Trace   *trace.Collector
	// FetchTimeout bounds each retrieval; zero waits indefinitely.
	FetchTimeout time.Duration
	Now          func() time.Time
	NewID        func() string
}

// Loader owns the fan-out/fan-in of a load cycle. It holds no per-cycle state
// and may be reused.
type Loader struct {
	fetcher Fetcher
	trace   *trace.Collector
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

// New constructs a Loader.
func New(opts Options) *Loader {
	l := &Loader{
		fetcher: opts.Fetcher,
		trace:   opts.Trace,
		timeout: opts.FetchTimeout,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if l.fetcher == nil {
		l.fetcher = &DefaultFetcher{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	if l.timeout < 0 {
		l.timeout = 0
	}
	return l
}

// Load runs one cycle. The returned Dataset has exactly one entry per
// descriptor; the error is non-nil only for configuration errors.
func (l *Loader) Load(ctx context.Context, descs []Descriptor) (*Dataset, error) {
	if err := Validate(descs); err != nil {
		l.trace.Logf("load aborted: %v", err)
		return nil, err
	}
	id := l.newID()
	l.trace.Logf("load cycle %s started with %d resources", id, len(descs))

	outcomes := make([]Outcome, len(descs))
	// Plain Group, not WithContext: one failure must not cancel the others.
	var g errgroup.Group
	for i, d := range descs {
		i, d := i, d
		l.trace.Logf("loading %s from %s", d.Name, d.Location)
		g.Go(func() error {
			outcomes[i] = l.fetchOne(ctx, d)
			return nil
		})
	}
	_ = g.Wait()

	ds := NewDataset(id, l.now(), outcomes)
	l.trace.Logf("load cycle %s complete: %d ok, %d failed", id, ds.OKCount(), ds.FailedCount())
	return ds, nil
}

func (l *Loader) fetchOne(ctx context.Context, d Descriptor) (o Outcome) {
	o = Outcome{Name: d.Name, Location: d.Location, Status: StatusFailed}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.Payload, o.Status, o.Err = nil, StatusFailed, fmt.Sprintf("panic: %v", r)
			l.trace.Logf("failed to load %s: %s", d.Name, o.Err)
		}
		o.Duration = time.Since(start)
		fetchTotal.WithLabelValues(d.Name, string(o.Status)).Inc()
		fetchDuration.WithLabelValues(d.Name).Observe(o.Duration.Seconds())
	}()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	b, err := l.fetcher.Fetch(ctx, d.Location)
	if err == nil {
		var payload any
		if payload, err = Decode(d.Location, b); err == nil {
			o.Payload, o.Status = payload, StatusOK
			l.trace.Logf("loaded %s (%d bytes)", d.Name, len(b))
			return o
		}
	}
	o.Err = err.Error()
	l.trace.Logf("failed to load %s: %v", d.Name, err)
	return o
}
