// Package dashboard coordinates load cycles. It is structured into small files by concern:
//
//   - service.go: Service, Reload (load -> detect -> dispatch or error page), Latest.
//   - refresh.go: periodic refresh loop and fsnotify watcher over file-based resources.
//   - metrics.go: cycle counters and durations.
//
// A cycle always reaches a terminal state: the dataset is announced exactly
// once, or, when nothing loaded, the error presentation is captured in
// Result.Failure. Cycles are serialised, so concurrent Reload calls run one
// after the other and each gets its own announcement.
package dashboard
