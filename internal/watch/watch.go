// Package watch re-runs a render whenever the schema documents behind it
// change on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher observes a set of schema documents and invokes a callback after
// changes, coalescing rapid event bursts with a debounce interval.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange func()
	stopCh   chan struct{}
}

// New creates a watcher over the given document paths. onChange runs on the
// watcher goroutine after each debounced change burst.
func New(paths []string, debounce time.Duration, logger zerolog.Logger, onChange func()) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no documents to watch")
	}

	files := make(map[string]bool, len(paths))
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the containing directories (more reliable for editors that do
	// atomic saves).
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	w := &Watcher{
		files:    files,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
	return w, nil
}

// Start begins delivering change notifications until Stop is called.
func (w *Watcher) Start() {
	go w.loop()
	w.logger.Info().Int("documents", len(w.files)).Msg("watching schema documents for changes")
}

// Stop stops watching for file changes.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema document changed")

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
			}

		case <-fire:
			fire = nil
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}
