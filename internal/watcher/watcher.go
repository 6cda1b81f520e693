// Package watcher reports changes to board data on disk, coalescing
// bursts of filesystem events into a single notification.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period after the last event before the
// callback fires.
const DefaultDelay = 100 * time.Millisecond

// relevantOps are the event kinds that can change what the board shows.
const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher calls back once per burst of changes under its paths. Lock
// files, sqlite journals and the temp files used for atomic replacement
// never trigger it.
type Watcher struct {
	fsw      *fsnotify.Watcher
	delay    time.Duration
	onChange func()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// New watches paths and calls onChange after each burst of relevant events.
func New(paths []string, onChange func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{fsw: fsw, delay: DefaultDelay, onChange: onChange}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is canceled or the watcher is closed. onChange is
// called from Run's goroutine. Watch errors go to errFn when it is non-nil.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			w.onChange()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 || ignored(event.Name) {
				continue
			}
			timer.Reset(w.delay)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close releases the underlying fsnotify watcher and makes Run return.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func ignored(path string) bool {
	name := filepath.Base(path)
	return name == ".lock" ||
		strings.HasPrefix(name, ".tmp-") ||
		strings.HasSuffix(name, "-journal") ||
		strings.HasSuffix(name, "-wal") ||
		strings.HasSuffix(name, "-shm")
}
