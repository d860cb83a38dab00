// Package watcher notifies callers when a single file on disk changes.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultStabilityThreshold is the quiet period required before a change is reported.
const DefaultStabilityThreshold = 200 * time.Millisecond

// ChangeCallback is called with the watched path once it has settled after a change
type ChangeCallback func(path string) error

// Config holds configuration for a FileWatcher
type Config struct {
	Path               string
	StabilityThreshold time.Duration
	OnChange           ChangeCallback
	OnRemove           ChangeCallback
	Logger             *zerolog.Logger
}

// FileWatcher monitors one file for changes.
//
// The parent directory is watched rather than the file itself so that editors
// which replace the file through a rename are still observed.
type FileWatcher struct {
	watcher            *fsnotify.Watcher
	path               string
	dir                string
	stabilityThreshold time.Duration
	onChange           ChangeCallback
	onRemove           ChangeCallback
	logger             zerolog.Logger

	done      chan struct{}
	timer     *time.Timer
	pendingOp fsnotify.Op
	inflight  sync.WaitGroup
	mu        sync.Mutex
	stopOnce  sync.Once
}

// New creates a new file watcher
func New(config Config) (*FileWatcher, error) {
	if config.Path == "" {
		return nil, errors.New("watch path is required")
	}
	if config.OnChange == nil {
		return nil, errors.New("change callback is required")
	}

	abs, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", config.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if config.StabilityThreshold <= 0 {
		config.StabilityThreshold = DefaultStabilityThreshold
	}

	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &FileWatcher{
		watcher:            watcher,
		path:               abs,
		dir:                filepath.Dir(abs),
		stabilityThreshold: config.StabilityThreshold,
		onChange:           config.OnChange,
		onRemove:           config.OnRemove,
		logger:             logger.With().Str("component", "watcher").Logger(),
		done:               make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched
func (w *FileWatcher) Path() string {
	return w.path
}

// Start starts watching the file
func (w *FileWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.eventLoop()

	w.logger.Info().
		Str("path", w.path).
		Dur("stability_threshold", w.stabilityThreshold).
		Msg("File watcher started")

	return nil
}

// Stop stops the watcher and cancels any pending notification. It returns
// once a callback already running has finished, so callbacks must not call
// Stop themselves.
func (w *FileWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()

		w.inflight.Wait()

		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}

		w.logger.Info().Str("path", w.path).Msg("File watcher stopped")
	})
	return err
}

func (w *FileWatcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.debounce(event.Op)
}

// debounce restarts the stability timer. The last operation seen wins.
func (w *FileWatcher) debounce(op fsnotify.Op) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	w.pendingOp = op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.stabilityThreshold, w.fire)
}

func (w *FileWatcher) fire() {
	w.mu.Lock()
	select {
	case <-w.done:
		w.mu.Unlock()
		return
	default:
	}
	op := w.pendingOp
	w.timer = nil
	// Registered under mu so Stop either sees it or fire sees done.
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	removed := op&(fsnotify.Remove|fsnotify.Rename) != 0
	callback := w.onChange
	if removed {
		callback = w.onRemove
	}
	if callback == nil {
		w.logger.Debug().Str("path", w.path).Str("op", op.String()).Msg("Ignoring file event")
		return
	}

	if err := callback(w.path); err != nil {
		w.logger.Error().
			Err(err).
			Str("path", w.path).
			Bool("removed", removed).
			Msg("Error handling file event")
	}
}
