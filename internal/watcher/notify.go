package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// New creates a watcher for paths. fsnotify is preferred; when it cannot be
// initialized, or opts.ForcePolling is set, a polling watcher is returned.
func New(paths []string, opts Options, logger *slog.Logger) (Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.WithDefaults()
	if !opts.ForcePolling {
		w, err := NewNotifyWatcher(paths, opts, logger)
		if err == nil {
			return w, nil
		}
		if len(paths) == 0 {
			return nil, err
		}
		logger.Warn("fsnotify unavailable, falling back to polling",
			slog.String("error", err.Error()),
			slog.Duration("interval", opts.PollInterval))
	}
	return NewPollingWatcher(paths, opts, logger)
}

// NotifyWatcher reports changes to a fixed set of files using fsnotify.
// The parent directories are watched and events are filtered by path.
type NotifyWatcher struct {
	files     map[string]struct{}
	dirs      []string
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	errors    chan error
	stopCh    chan struct{}
	logger    *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewNotifyWatcher creates an fsnotify watcher for paths.
func NewNotifyWatcher(paths []string, opts Options, logger *slog.Logger) (*NotifyWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.WithDefaults()

	files, err := resolveFiles(paths)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}

	return &NotifyWatcher{
		files:     set,
		dirs:      parentDirs(files),
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(opts.DebounceWindow, logger),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		logger:    logger,
	}, nil
}

// Start registers the parent directories and forwards matching events until
// Stop is called or ctx is cancelled.
func (w *NotifyWatcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", slog.String("dir", dir))
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.sendError(err)
		}
	}
}

func (w *NotifyWatcher) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if _, ok := w.files[path]; !ok {
		return
	}
	op, ok := translateOp(ev.Op)
	if !ok {
		return
	}
	w.logger.Debug("file event", slog.String("path", path), slog.String("op", op.String()))
	w.debouncer.Add(FileEvent{Path: path, Operation: op, Timestamp: time.Now()})
}

// translateOp maps an fsnotify op to an Operation. Chmod-only events are dropped.
func translateOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpModify, true
	case op.Has(fsnotify.Remove):
		return OpDelete, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	default:
		return 0, false
	}
}

func (w *NotifyWatcher) sendError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("watcher error dropped", slog.String("error", err.Error()))
	}
}

// Stop stops the watcher. Safe to call multiple times.
func (w *NotifyWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	err := w.fsWatcher.Close()
	w.debouncer.Stop()
	close(w.errors)
	return err
}

// Events returns debounced batches of file events.
func (w *NotifyWatcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors.
func (w *NotifyWatcher) Errors() <-chan error {
	return w.errors
}
