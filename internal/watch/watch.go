// Package watch reports changes to the data files so views can re-render.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"deepwork/internal/logging"
)

// Watcher observes a fixed set of files. It watches their parent
// directories, since the stores replace files by renaming over them.
type Watcher struct {
	watcher  *fsnotify.Watcher
	targets  map[string]struct{}
	debounce time.Duration
	logger   *logrus.Entry
}

// New watches paths. Bursts of events closer together than debounce are
// reported once. Missing parent directories are created.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		targets:  make(map[string]struct{}, len(paths)),
		debounce: debounce,
		logger:   logging.NewLogger("watch"),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		w.targets[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			watcher.Close()
			return nil, err
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
		dirs[dir] = true
		w.logger.Debugf("watching directory %s", dir)
	}
	return w, nil
}

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

func (w *Watcher) matches(event fsnotify.Event) bool {
	if event.Op&relevantOps == 0 {
		return false
	}
	_, ok := w.targets[filepath.Clean(event.Name)]
	return ok
}

// Run delivers changed paths to onChange until ctx is done. Each call
// carries the sorted set of files touched since the previous call.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		sort.Strings(changed)
		clear(pending)
		w.logger.WithField("files", changed).Debug("data changed")
		onChange(changed)
	}

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.matches(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = struct{}{}
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if len(pending) > 0 {
				flush()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
