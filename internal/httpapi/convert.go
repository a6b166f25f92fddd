package httpapi

import (
	"reportdash/internal/dashboard"
	"reportdash/internal/trace"
	"reportdash/pkg/types"
)

func datasetResponse(res *dashboard.Result) types.DatasetResponse {
	ds := res.Dataset
	out := types.DatasetResponse{
		CycleID:   res.CycleID,
		LoadedAt:  ds.LoadedAt,
		IsSample:  res.IsSample,
		Signature: res.Signature,
		Data:      ds.Map(),
	}
	for _, o := range ds.Outcomes() {
		out.Resources = append(out.Resources, types.ResourceStatus{
			Name:       o.Name,
			Status:     string(o.Status),
			Error:      o.Err,
			DurationMS: o.Duration.Milliseconds(),
		})
	}
	return out
}

func reloadResponse(res *dashboard.Result) types.ReloadResponse {
	out := types.ReloadResponse{
		CycleID:    res.CycleID,
		Announced:  res.Announcement != nil,
		IsSample:   res.IsSample,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Dataset != nil {
		out.OK = res.Dataset.OKCount()
		out.Failed = res.Dataset.FailedCount()
	}
	return out
}

func traceResponse(c *trace.Collector) types.TraceResponse {
	entries := c.Entries()
	out := types.TraceResponse{Entries: make([]types.TraceEntry, 0, len(entries)), Dropped: c.Dropped()}
	for _, e := range entries {
		out.Entries = append(out.Entries, types.TraceEntry{Time: e.Time, Message: e.Message})
	}
	return out
}
