package dispatch

import "context"

// Section identifies one dashboard area fed by the dataset.
type Section string

const (
	SectionCoverage   Section = "coverage"
	SectionQuality    Section = "quality"
	SectionFunctional Section = "functional"
	SectionValidation Section = "validation"
	SectionHistory    Section = "history"
)

// SectionSpec maps a section to the dataset entries it consumes. Key feeds
// Data and Companions feed Extra. The section has data when any of them
// loaded, so Data may be nil when only a companion is present.
type SectionSpec struct {
	Section    Section
	Key        string
	Companions []string
}

// Sections lists every section in announcement order.
var Sections = []SectionSpec{
	{Section: SectionCoverage, Key: "coverage"},
	{Section: SectionQuality, Key: "quality", Companions: []string{"gaps"}},
	{Section: SectionFunctional, Key: "functional"},
	{Section: SectionValidation, Key: "validation"},
	{Section: SectionHistory, Key: "history"},
}

// SectionInput is what a renderer receives for its section.
type SectionInput struct {
	CycleID  string
	Section  Section
	Data     any
	Extra    map[string]any
	IsSample bool
}

// SectionRenderer renders one section.
type SectionRenderer interface {
	Render(ctx context.Context, in SectionInput) error
}

// RendererFunc adapts a function to SectionRenderer.
type RendererFunc func(ctx context.Context, in SectionInput) error

func (f RendererFunc) Render(ctx context.Context, in SectionInput) error { return f(ctx, in) }

// Renderers holds one optional slot per section. A nil slot means no
// renderer is installed for that section.
type Renderers struct {
	Coverage   SectionRenderer
	Quality    SectionRenderer
	Functional SectionRenderer
	Validation SectionRenderer
	History    SectionRenderer
}

// For returns the renderer installed for s, or nil.
func (r Renderers) For(s Section) SectionRenderer {
	switch s {
	case SectionCoverage:
		return r.Coverage
	case SectionQuality:
		return r.Quality
	case SectionFunctional:
		return r.Functional
	case SectionValidation:
		return r.Validation
	case SectionHistory:
		return r.History
	default:
		return nil
	}
}

// Capabilities holds the external "section enabled" flags. A missing
// section is disabled.
type Capabilities map[Section]bool

// AllEnabled returns capabilities with every section switched on.
func AllEnabled() Capabilities {
	c := make(Capabilities, len(Sections))
	for _, s := range Sections {
		c[s.Section] = true
	}
	return c
}

// Enabled reports whether s is switched on.
func (c Capabilities) Enabled(s Section) bool { return c[s] }
