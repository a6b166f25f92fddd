package types

import "time"

// ResourceStatus summarizes one retrieval of a load cycle.
type ResourceStatus struct {
	// Resource name as configured.
	// example: coverage
	Name string `json:"name" example:"coverage"`
	// Settled state: ok or failed.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Failure detail for failed resources.
	Error string `json:"error,omitempty"`
	// Retrieval duration in milliseconds.
	// example: 12
	DurationMS int64 `json:"duration_ms" example:"12"`
}

// DatasetResponse is returned by GET /api/dataset.
type DatasetResponse struct {
	// Identifier of the load cycle that produced the dataset.
	// example: 0b0c6f3e-5a4e-4a53-9c0e-0f5b1f1d6a10
	CycleID string `json:"cycle_id" example:"0b0c6f3e-5a4e-4a53-9c0e-0f5b1f1d6a10"`
	// Time the cycle settled.
	LoadedAt time.Time `json:"loaded_at"`
	// True when the content looks like placeholder example data.
	// example: false
	IsSample bool `json:"is_sample" example:"false"`
	// Name of the sample-data signature that matched, if any.
	// example: coverage-constant-percent
	Signature string `json:"signature,omitempty" example:"coverage-constant-percent"`
	// Parsed payload per resource; null for failed resources.
	Data map[string]any `json:"data"`
	// Per-resource outcomes in configuration order.
	Resources []ResourceStatus `json:"resources"`
}

// Metric is one labelled value on a panel.
type Metric struct {
	// example: Coverage
	Label string `json:"label" example:"Coverage"`
	// example: 83.2%
	Value string `json:"value" example:"83.2%"`
}

// Panel is the rendered summary of one dashboard section.
type Panel struct {
	// Section key.
	// example: coverage
	Section string `json:"section" example:"coverage"`
	// Display title.
	// example: Test coverage
	Title string `json:"title" example:"Test coverage"`
	// Summary metrics in display order.
	Metrics []Metric `json:"metrics"`
	// Optional list of notable items (files, gaps, failing checks).
	Items []string `json:"items,omitempty"`
}

// BoardResponse is returned by GET /api/board.
type BoardResponse struct {
	// example: 0b0c6f3e-5a4e-4a53-9c0e-0f5b1f1d6a10
	CycleID string `json:"cycle_id" example:"0b0c6f3e-5a4e-4a53-9c0e-0f5b1f1d6a10"`
	// example: false
	IsSample bool `json:"is_sample" example:"false"`
	// Rendered panels in section order.
	Panels []Panel `json:"panels"`
}

// ReloadResponse is returned by POST /api/reload.
type ReloadResponse struct {
	// example: 0b0c6f3e-5a4e-4a53-9c0e-0f5b1f1d6a10
	CycleID string `json:"cycle_id" example:"0b0c6f3e-5a4e-4a53-9c0e-0f5b1f1d6a10"`
	// Number of resources that loaded.
	// example: 5
	OK int `json:"ok" example:"5"`
	// Number of resources that failed.
	// example: 1
	Failed int `json:"failed" example:"1"`
	// Whether the dataset was announced to the renderers.
	// example: true
	Announced bool `json:"announced" example:"true"`
	// example: false
	IsSample bool `json:"is_sample" example:"false"`
	// Cycle duration in milliseconds.
	// example: 40
	DurationMS int64 `json:"duration_ms" example:"40"`
}

// TraceEntry is one diagnostic line.
type TraceEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// TraceResponse is returned by GET /api/trace.
type TraceResponse struct {
	Entries []TraceEntry `json:"entries"`
	// Entries evicted by the retention limit.
	// example: 0
	Dropped uint64 `json:"dropped" example:"0"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: no report could be loaded
	Error string `json:"error" example:"no report could be loaded"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}
