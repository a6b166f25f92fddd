package loader

import "time"

// Descriptor names one report artifact and where to retrieve it from.
type Descriptor struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Location string `json:"location" yaml:"location" toml:"location"`
}

// Status is the settled state of a single retrieval.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Outcome records how one descriptor settled. Payload is nil iff Status is
// StatusFailed.
type Outcome struct {
	Name     string
	Location string
	Payload  any
	Status   Status
	Err      string
	Duration time.Duration
}

// Dataset maps every configured resource name to its parsed payload, or to
// nil when the retrieval failed. It is read-only once Load returns.
type Dataset struct {
	CycleID  string
	LoadedAt time.Time
	order    []string
	outcomes map[string]Outcome
}

// NewDataset assembles a dataset from settled outcomes, preserving their order.
func NewDataset(cycleID string, loadedAt time.Time, outcomes []Outcome) *Dataset {
	ds := &Dataset{
		CycleID:  cycleID,
		LoadedAt: loadedAt,
		order:    make([]string, 0, len(outcomes)),
		outcomes: make(map[string]Outcome, len(outcomes)),
	}
	for _, o := range outcomes {
		if _, dup := ds.outcomes[o.Name]; !dup {
			ds.order = append(ds.order, o.Name)
		}
		ds.outcomes[o.Name] = o
	}
	return ds
}

// FromMap builds a dataset where nil values are failed resources. Intended for
// tests and for callers holding already-parsed sections.
func FromMap(sections map[string]any) *Dataset {
	outcomes := make([]Outcome, 0, len(sections))
	for name, v := range sections {
		o := Outcome{Name: name, Payload: v, Status: StatusOK}
		if v == nil {
			o.Status = StatusFailed
			o.Err = "missing"
		}
		outcomes = append(outcomes, o)
	}
	return NewDataset("", time.Time{}, outcomes)
}

// Section returns the payload for name, nil when absent or failed.
func (d *Dataset) Section(name string) any {
	if d == nil {
		return nil
	}
	return d.outcomes[name].Payload
}

// Has reports whether name is one of the dataset's keys.
func (d *Dataset) Has(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.outcomes[name]
	return ok
}

// Names returns the dataset keys in descriptor order.
func (d *Dataset) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}

// Outcome returns the settled outcome for name.
func (d *Dataset) Outcome(name string) (Outcome, bool) {
	if d == nil {
		return Outcome{}, false
	}
	o, ok := d.outcomes[name]
	return o, ok
}

// Outcomes returns every outcome in descriptor order.
func (d *Dataset) Outcomes() []Outcome {
	if d == nil {
		return nil
	}
	out := make([]Outcome, 0, len(d.order))
	for _, n := range d.order {
		out = append(out, d.outcomes[n])
	}
	return out
}

// OKCount reports how many resources loaded.
func (d *Dataset) OKCount() int {
	n := 0
	for _, o := range d.Outcomes() {
		if o.Status == StatusOK {
			n++
		}
	}
	return n
}

// FailedCount reports how many resources failed.
func (d *Dataset) FailedCount() int {
	return len(d.Outcomes()) - d.OKCount()
}

// Empty reports whether no resource loaded.
func (d *Dataset) Empty() bool { return d.OKCount() == 0 }

// Map returns a shallow copy of the name -> payload mapping.
func (d *Dataset) Map() map[string]any {
	if d == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(d.outcomes))
	for n, o := range d.outcomes {
		out[n] = o.Payload
	}
	return out
}
