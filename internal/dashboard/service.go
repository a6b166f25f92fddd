package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reportdash/internal/detect"
	"reportdash/internal/dispatch"
	"reportdash/internal/errorview"
	"reportdash/internal/loader"
	"reportdash/internal/render"
	"reportdash/internal/trace"
	"reportdash/pkg/types"
)

// ErrNoData reports a cycle in which no resource could be loaded.
var ErrNoData = errors.New("no report could be loaded")

// IsNoData reports whether err indicates a total load failure.
func IsNoData(err error) bool { return errors.Is(err, ErrNoData) }

// Config wires a Service. Zero values select defaults.
type Config struct {
	Resources     []loader.Descriptor
	Capabilities  dispatch.Capabilities
	FetchTimeout  time.Duration
	TraceCapacity int
	SampleQueries []detect.Query
	Fetcher       loader.Fetcher
	Publisher     dispatch.EventPublisher
	// Renderers replaces the built-in board renderers when set.
	Renderers *dispatch.Renderers
	Now       func() time.Time
	Logger    zerolog.Logger
}

// Result is the terminal state of one load cycle: either an announcement or
// the error presentation.
type Result struct {
	CycleID      string
	Dataset      *loader.Dataset
	IsSample     bool
	Signature    string
	Announcement *dispatch.Announcement
	Board        types.BoardResponse
	Failure      *errorview.Page
	RenderErr    error
	StartedAt    time.Time
	Duration     time.Duration
}

// Err returns ErrNoData when the cycle ended on the error presentation.
func (r *Result) Err() error {
	if r == nil || r.Failure != nil {
		return ErrNoData
	}
	return nil
}

// Service runs load cycles and keeps the latest result.
type Service struct {
	cycleMu    sync.Mutex
	mu         sync.RWMutex
	resources  []loader.Descriptor
	trace      *trace.Collector
	loader     *loader.Loader
	detector   *detect.Detector
	dispatcher *dispatch.Dispatcher
	board      *render.Board
	log        zerolog.Logger
	now        func() time.Time
	last       *Result
}

// traceEntriesPerResource bounds the trace lines one resource writes in a
// cycle (loading, outcome) with room for the cycle and detection lines.
const traceEntriesPerResource = 4

// TraceCapacityFor raises a bounded capacity so the trace can always hold one
// whole cycle over n resources. The failure page snapshots the trace after the
// cycle, so a smaller buffer would evict the failure lines it exists to show.
// Zero (unbounded) is returned unchanged.
func TraceCapacityFor(capacity, n int) int {
	if capacity <= 0 {
		return capacity
	}
	if floor := traceEntriesPerResource*n + 8; capacity < floor {
		return floor
	}
	return capacity
}

// New validates cfg and builds a Service. Configuration errors (invalid
// descriptors, bad sample queries) are returned here, before any retrieval.
func New(cfg Config) (*Service, error) {
	if err := loader.Validate(cfg.Resources); err != nil {
		return nil, err
	}
	extra, err := detect.QuerySignatures(cfg.SampleQueries)
	if err != nil {
		return nil, &loader.ConfigError{Reason: err.Error()}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	tr := trace.New(TraceCapacityFor(cfg.TraceCapacity, len(cfg.Resources)))
	tr.SetLogger(cfg.Logger)
	caps := cfg.Capabilities
	if caps == nil {
		caps = dispatch.AllEnabled()
	}
	board := render.NewBoard()
	renderers := board.Renderers()
	if cfg.Renderers != nil {
		renderers = *cfg.Renderers
	}
	s := &Service{
		resources: append([]loader.Descriptor(nil), cfg.Resources...),
		trace:     tr,
		loader: loader.New(loader.Options{
			Fetcher:      cfg.Fetcher,
			Trace:        tr,
			FetchTimeout: cfg.FetchTimeout,
			Now:          now,
		}),
		detector:   detect.New(detect.WithClock(now), detect.WithTrace(tr), detect.WithSignatures(extra...)),
		dispatcher: dispatch.New(renderers, caps, dispatch.WithPublisher(cfg.Publisher), dispatch.WithTrace(tr)),
		board:      board,
		log:        cfg.Logger,
		now:        now,
	}
	return s, nil
}

// Reload runs one complete load cycle. Cycles are serialised; each ends in
// exactly one announcement or in the error presentation. The returned error
// is non-nil only for configuration errors.
func (s *Service) Reload(ctx context.Context) (*Result, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	ds, err := s.loader.Load(ctx, s.resources)
	if err != nil {
		cyclesTotal.WithLabelValues(outcomeConfigError).Inc()
		s.log.Error().Err(err).Msg("load cycle rejected")
		return nil, err
	}
	res := &Result{CycleID: ds.CycleID, Dataset: ds, StartedAt: start}

	if ds.Empty() {
		page := errorview.New(s.trace)
		res.Failure = &page
		res.Duration = time.Since(start)
		s.dispatcher.Publisher().Publish(dispatch.Event{Name: dispatch.EventLoadFailed, CycleID: ds.CycleID, Fields: map[string]any{
			"failed": ds.FailedCount(),
		}})
		s.observe(res, outcomeFailed)
		s.log.Warn().Str("cycle", ds.CycleID).Int("failed", ds.FailedCount()).Msg("no report could be loaded")
		return res, nil
	}

	res.Signature, res.IsSample = s.detector.Match(ds)
	s.board.Begin(ds.CycleID)
	ann, rerr := s.dispatcher.NewCycle(ds.CycleID).Announce(ctx, ds, res.IsSample)
	res.Announcement = &ann
	res.RenderErr = rerr
	res.Board = s.board.Snapshot()
	res.Duration = time.Since(start)
	if rerr != nil {
		s.log.Warn().Err(rerr).Str("cycle", ds.CycleID).Msg("some sections failed to render")
	}
	outcome := outcomeOK
	if res.IsSample {
		outcome = outcomeSample
	}
	s.observe(res, outcome)
	s.log.Info().
		Str("cycle", ds.CycleID).
		Int("ok", ds.OKCount()).
		Int("failed", ds.FailedCount()).
		Bool("sample", res.IsSample).
		Dur("dur", res.Duration).
		Msg("dataset announced")
	return res, nil
}

func (s *Service) observe(res *Result, outcome string) {
	cyclesTotal.WithLabelValues(outcome).Inc()
	cycleDuration.Observe(res.Duration.Seconds())
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
}

// Latest returns the most recent completed cycle.
func (s *Service) Latest() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

// Ready reports whether the latest cycle announced a dataset.
func (s *Service) Ready() bool {
	r, ok := s.Latest()
	return ok && r.Failure == nil
}

// Trace exposes the diagnostic log.
func (s *Service) Trace() *trace.Collector { return s.trace }

// Resources returns the configured descriptors.
func (s *Service) Resources() []loader.Descriptor {
	return append([]loader.Descriptor(nil), s.resources...)
}
