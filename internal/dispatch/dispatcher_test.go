package dispatch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportdash/internal/loader"
	"reportdash/internal/trace"
)

type recorder struct {
	mu    sync.Mutex
	calls map[Section][]SectionInput
	fail  map[Section]error
}

func newRecorder() *recorder { return &recorder{calls: map[Section][]SectionInput{}, fail: map[Section]error{}} }

func (r *recorder) slot(s Section) SectionRenderer {
	return RendererFunc(func(ctx context.Context, in SectionInput) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls[s] = append(r.calls[s], in)
		return r.fail[s]
	})
}

func (r *recorder) renderers() Renderers {
	return Renderers{
		Coverage:   r.slot(SectionCoverage),
		Quality:    r.slot(SectionQuality),
		Functional: r.slot(SectionFunctional),
		Validation: r.slot(SectionValidation),
		History:    r.slot(SectionHistory),
	}
}

func (r *recorder) count(s Section) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls[s])
}

func fullDataset() *loader.Dataset {
	return loader.FromMap(map[string]any{
		"coverage":   map[string]any{"totals": map[string]any{"percent_covered": 80.0}},
		"quality":    map[string]any{"score": 8.0},
		"gaps":       []any{"a"},
		"functional": map[string]any{"features": 3.0},
		"validation": map[string]any{"passed": 1.0},
		"history":    map[string]any{"dates": []any{"2024-01-01"}},
	})
}

func TestAnnounce_RendersAllEnabledSections(t *testing.T) {
	rec := newRecorder()
	pub := NewMemoryPublisher()
	d := New(rec.renderers(), AllEnabled(), WithPublisher(pub))
	c := d.NewCycle("c1")
	ann, err := c.Announce(context.Background(), fullDataset(), true)
	require.NoError(t, err)
	assert.Len(t, ann.Rendered, 5)
	assert.Empty(t, ann.Skipped)
	for _, s := range Sections {
		assert.Equal(t, 1, rec.count(s.Section), s.Section)
	}
	q := rec.calls[SectionQuality][0]
	assert.Equal(t, []any{"a"}, q.Extra["gaps"])
	assert.True(t, q.IsSample)
	assert.Equal(t, "c1", q.CycleID)
	assert.Equal(t, 1, pub.Count(EventDatasetReady))

	select {
	case <-c.Ready():
	default:
		t.Fatalf("ready channel should be closed")
	}
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, "c1", res.CycleID)
}

func TestAnnounce_ValidationFlagDisabled(t *testing.T) {
	rec := newRecorder()
	caps := AllEnabled()
	caps[SectionValidation] = false
	d := New(rec.renderers(), caps)
	ann, err := d.NewCycle("c").Announce(context.Background(), fullDataset(), false)
	require.NoError(t, err)
	assert.Zero(t, rec.count(SectionValidation))
	assert.Equal(t, SkipDisabled, ann.Skipped[SectionValidation])
	assert.Equal(t, 1, rec.count(SectionCoverage))
}

func TestAnnounce_SkipsNullSectionsAndMissingRenderers(t *testing.T) {
	rec := newRecorder()
	r := rec.renderers()
	r.History = nil
	ds := loader.FromMap(map[string]any{
		"coverage":   nil,
		"quality":    nil,
		"gaps":       nil,
		"functional": map[string]any{},
		"validation": map[string]any{},
		"history":    map[string]any{},
	})
	tr := trace.New(0)
	ann, err := New(r, AllEnabled(), WithTrace(tr)).NewCycle("c").Announce(context.Background(), ds, false)
	require.NoError(t, err)
	assert.Equal(t, SkipNoData, ann.Skipped[SectionCoverage])
	assert.Equal(t, SkipNoData, ann.Skipped[SectionQuality])
	assert.Equal(t, SkipNoRenderer, ann.Skipped[SectionHistory])
	assert.Equal(t, []Section{SectionFunctional, SectionValidation}, ann.Rendered)
	assert.Zero(t, rec.count(SectionCoverage))
	assert.Zero(t, rec.count(SectionQuality))
	assert.Contains(t, tr.String(), "section coverage skipped: no data")
}

func TestAnnounce_CompanionAloneFeedsSection(t *testing.T) {
	rec := newRecorder()
	ds := loader.FromMap(map[string]any{"quality": nil, "gaps": []any{"x"}})
	ann, err := New(rec.renderers(), AllEnabled()).NewCycle("c").Announce(context.Background(), ds, false)
	require.NoError(t, err)
	require.Equal(t, 1, rec.count(SectionQuality))
	assert.NotContains(t, ann.Skipped, SectionQuality)
	assert.Equal(t, []Section{SectionQuality}, ann.Rendered)
	in := rec.calls[SectionQuality][0]
	assert.Nil(t, in.Data)
	assert.Equal(t, []any{"x"}, in.Extra["gaps"])
}

func TestAnnounce_AtMostOncePerCycle(t *testing.T) {
	rec := newRecorder()
	pub := NewMemoryPublisher()
	d := New(rec.renderers(), AllEnabled(), WithPublisher(pub))
	c := d.NewCycle("c")
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Announce(context.Background(), fullDataset(), false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	dup := 0
	for err := range errs {
		if errors.Is(err, ErrAlreadyAnnounced) {
			dup++
		}
	}
	assert.Equal(t, 9, dup)
	assert.Equal(t, 1, pub.Count(EventDatasetReady))
	assert.Equal(t, 1, rec.count(SectionCoverage))

	// a new cycle announces again
	_, err := d.NewCycle("c2").Announce(context.Background(), fullDataset(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, pub.Count(EventDatasetReady))
}

func TestAnnounce_RendererErrorDoesNotStopOthers(t *testing.T) {
	rec := newRecorder()
	boom := errors.New("boom")
	rec.fail[SectionCoverage] = boom
	ann, err := New(rec.renderers(), AllEnabled()).NewCycle("c").Announce(context.Background(), fullDataset(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ann.Rendered, 4)
	assert.Equal(t, 1, rec.count(SectionHistory))
}

func TestAnnounce_NilCapabilitiesDisableEverything(t *testing.T) {
	rec := newRecorder()
	ann, err := New(rec.renderers(), nil).NewCycle("c").Announce(context.Background(), fullDataset(), false)
	require.NoError(t, err)
	assert.Empty(t, ann.Rendered)
	assert.Len(t, ann.Skipped, len(Sections))
}

func TestCycle_ResultBeforeAnnounce(t *testing.T) {
	c := New(Renderers{}, AllEnabled()).NewCycle("c")
	_, ok := c.Result()
	assert.False(t, ok)
	assert.Equal(t, "c", c.ID())
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	LogPublisher{Log: zerolog.New(&buf)}.Publish(Event{Name: EventDatasetReady, CycleID: "c1", Fields: map[string]any{"ok": 5}})
	out := buf.String()
	assert.Contains(t, out, `"event":"dataset_ready"`)
	assert.Contains(t, out, `"cycle":"c1"`)
	assert.Contains(t, out, `"ok":5`)
}
