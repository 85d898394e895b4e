// Package watch re-runs a comparison whenever its input files change.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/artpar/modeldiff/core/formatter"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// CompareFunc produces a fresh diff result.
type CompareFunc func() (formatter.Result, error)

// Watcher holds the latest diff result and refreshes it on file changes.
type Watcher struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex
	compare  CompareFunc
	paths    map[string]bool
	debounce time.Duration
	last     formatter.Result
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onDiff   []func(formatter.Result)
	onReload []func(error)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for the given input files. It does not run the
// first comparison; call Reload for that.
func New(compare CompareFunc, paths []string, debounce time.Duration, logger zerolog.Logger) (*Watcher, error) {
	abs := make(map[string]bool, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		abs[a] = true
	}

	return &Watcher{
		compare:  compare,
		paths:    abs,
		debounce: debounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Last returns the most recent successful result (thread-safe).
func (w *Watcher) Last() formatter.Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// Reload runs the comparison again. On error the previous result is kept.
func (w *Watcher) Reload() error {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	res, err := w.compare()

	w.mu.RLock()
	onDiff := append([]func(formatter.Result){}, w.onDiff...)
	onReload := append([]func(error){}, w.onReload...)
	w.mu.RUnlock()

	for _, fn := range onReload {
		fn(err)
	}

	if err != nil {
		w.logger.Error().Err(err).Msg("compare failed, keeping previous result")
		return fmt.Errorf("reload: %w", err)
	}

	w.mu.Lock()
	w.last = res
	w.mu.Unlock()

	// Notify listeners
	for _, fn := range onDiff {
		fn(res)
	}

	w.logger.Info().
		Str("schema", res.Schema).
		Bool("changed", res.Changed()).
		Msg("documents compared")
	return nil
}

// OnDiff registers a callback for every successful comparison.
func (w *Watcher) OnDiff(fn func(formatter.Result)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onDiff = append(w.onDiff, fn)
}

// OnReload registers a callback for every comparison attempt.
func (w *Watcher) OnReload(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// WatchFiles starts watching the input files for changes.
// Changes trigger a reload after the debounce delay.
func (w *Watcher) WatchFiles() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.watcher = watcher

	// Watch directories (more reliable for editors that do atomic saves)
	dirs := make(map[string]bool)
	for p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch directory: %w", err)
		}
	}

	go w.watchLoop()

	w.logger.Info().Int("files", len(w.paths)).Msg("watching documents for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (w *Watcher) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				w.logger.Info().Msg("received SIGHUP, comparing again")
				if err := w.Reload(); err != nil {
					w.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-w.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop stops watching for file changes and signals. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}

func (w *Watcher) watchLoop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := func() {
		if err := w.Reload(); err != nil {
			w.logger.Error().Err(err).Msg("file watch reload failed")
		}
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only react to watched documents
			if !w.paths[filepath.Clean(event.Name)] {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("document changed")

			if w.debounce <= 0 {
				reload()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-w.stopCh:
			return
		}
	}
}
