package dashboard

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"reportdash/internal/common/fsutil"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 300 * time.Millisecond

// RunRefresh reloads every interval until ctx is done. A non-positive
// interval returns immediately.
func (s *Service) RunRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Reload(ctx); err != nil {
				s.log.Error().Err(err).Msg("scheduled reload failed")
			}
		}
	}
}

// WatchedFiles returns the absolute paths of file-based resources.
func (s *Service) WatchedFiles() []string {
	var out []string
	for _, d := range s.resources {
		p, ok, err := fsutil.LocalPath(d.Location)
		if !ok || err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

// Watch reloads whenever a file-based resource is written, created, renamed
// or removed. It blocks until ctx is done. Directories are watched rather
// than files so that atomic replace-by-rename is seen.
func (s *Service) Watch(ctx context.Context, debounce time.Duration) error {
	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range s.WatchedFiles() {
		files[p] = true
		dirs[filepath.Dir(p)] = true
	}
	if len(files) == 0 {
		s.log.Info().Msg("watch: no file-based resources, nothing to watch")
		return nil
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for dir := range dirs {
		if !fsutil.PathExists(dir) {
			s.log.Warn().Str("dir", dir).Msg("watch: directory does not exist yet")
			continue
		}
		if err := w.Add(dir); err != nil {
			s.log.Warn().Err(err).Str("dir", dir).Msg("watch: cannot watch directory")
			continue
		}
		s.log.Debug().Str("dir", dir).Msg("watch: watching directory")
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(ev.Name)] || ev.Op&relevant == 0 {
				continue
			}
			s.trace.Logf("watch: %s %s", ev.Op, ev.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("watch error")
		case <-fire:
			fire = nil
			if _, err := s.Reload(ctx); err != nil {
				s.log.Error().Err(err).Msg("reload after change failed")
			}
		}
	}
}
