package collection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before refreshing.
const DefaultDebounce = 250 * time.Millisecond

// Watcher refreshes the collection when files change under a directory the
// backend writes its requests to. Bursts of events collapse into one refresh.
type Watcher struct {
	fs       *fsnotify.Watcher
	refresh  func(ctx context.Context)
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher watches dir and every directory below it. refresh is called at
// most once per debounce window.
func NewWatcher(dir string, debounce time.Duration, refresh func(ctx context.Context), logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fs.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fs: fs, refresh: refresh, debounce: debounce, logger: logger}, nil
}

// Run delivers refreshes until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ignored(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.fs.Add(ev.Name); err != nil {
						w.logger.Warn("could not watch new directory", slog.String("path", ev.Name), slog.Any("error", err))
					}
				}
			}
			w.logger.Debug("collection change detected", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		case <-timer.C:
			w.refresh(ctx)
		}
	}
}

// Close stops watching. Run returns once the event channels drain.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// ignored filters events that never change the collection: chmod-only
// events and editor or atomic-write temp files.
func ignored(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}
