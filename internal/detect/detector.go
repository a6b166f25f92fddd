// Package detect decides whether a dataset holds placeholder ("sample")
// report content instead of genuine pipeline output.
//
// A Detector evaluates an ordered list of signatures and stops at the first
// match. Signatures are pure and must return false, never panic, when the
// section they inspect is missing or has an unexpected shape.
package detect

import (
	"time"

	"reportdash/internal/loader"
	"reportdash/internal/trace"
)

// Signature is one sample-data heuristic.
type Signature struct {
	Name  string
	Match func(ds *loader.Dataset) bool
}

// Detector holds the ordered signature list.
type Detector struct {
	signatures []Signature
	trace      *trace.Collector
	now        func() time.Time
	extra      []Signature
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock sets the time source used by date-based signatures.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// WithTrace records the detection verdict in c.
func WithTrace(c *trace.Collector) Option {
	return func(d *Detector) { d.trace = c }
}

// WithSignatures appends signatures after the built-in ones.
func WithSignatures(sigs ...Signature) Option {
	return func(d *Detector) { d.extra = append(d.extra, sigs...) }
}

// New returns a detector with the built-in signatures followed by any extras.
func New(opts ...Option) *Detector {
	d := &Detector{now: time.Now}
	for _, o := range opts {
		o(d)
	}
	d.signatures = append(Builtin(func() time.Time { return d.now() }), d.extra...)
	return d
}

// Builtin returns the default signatures in evaluation order.
func Builtin(now func() time.Time) []Signature {
	return []Signature{
		FutureHistoryDates(now),
		ReferenceCoverageFiles(DefaultReferencePaths...),
		ConstantCoveragePercent(DefaultSamplePercent),
	}
}

// Names lists the signatures in evaluation order.
func (d *Detector) Names() []string {
	out := make([]string, 0, len(d.signatures))
	for _, s := range d.signatures {
		out = append(out, s.Name)
	}
	return out
}

// Match returns the name of the first matching signature.
func (d *Detector) Match(ds *loader.Dataset) (string, bool) {
	for _, s := range d.signatures {
		if s.Match != nil && s.Match(ds) {
			d.trace.Logf("sample data detected: signature %s matched", s.Name)
			return s.Name, true
		}
	}
	d.trace.Log("sample data check: no signature matched")
	return "", false
}

// IsSampleData reports whether any signature matches ds.
func (d *Detector) IsSampleData(ds *loader.Dataset) bool {
	_, ok := d.Match(ds)
	return ok
}
