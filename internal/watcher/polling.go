package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// PollingWatcher detects changes by comparing file metadata on a ticker.
// Used where fsnotify is unavailable or unreliable.
type PollingWatcher struct {
	files     []string
	interval  time.Duration
	state     map[string]fileSnapshot
	debouncer *Debouncer
	errors    chan error
	stopCh    chan struct{}
	logger    *slog.Logger

	mu      sync.Mutex
	stopped bool
}

type fileSnapshot struct {
	exists  bool
	modTime time.Time
	size    int64
}

// NewPollingWatcher creates a polling watcher for paths.
func NewPollingWatcher(paths []string, opts Options, logger *slog.Logger) (*PollingWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.WithDefaults()

	files, err := resolveFiles(paths)
	if err != nil {
		return nil, err
	}
	return &PollingWatcher{
		files:     files,
		interval:  opts.PollInterval,
		state:     make(map[string]fileSnapshot, len(files)),
		debouncer: NewDebouncer(opts.DebounceWindow, logger),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		logger:    logger,
	}, nil
}

// Start records a baseline and polls until Stop is called or ctx is cancelled.
func (p *PollingWatcher) Start(ctx context.Context) error {
	for _, f := range p.files {
		snap, err := snapshot(f)
		if err != nil {
			return fmt.Errorf("perform initial scan: %w", err)
		}
		p.state[f] = snap
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

func (p *PollingWatcher) detectChanges() {
	now := time.Now()
	for _, f := range p.files {
		cur, err := snapshot(f)
		if err != nil {
			p.sendError(err)
			continue
		}
		prev := p.state[f]
		p.state[f] = cur

		var op Operation
		switch {
		case !prev.exists && cur.exists:
			op = OpCreate
		case prev.exists && !cur.exists:
			op = OpDelete
		case cur.exists && (!cur.modTime.Equal(prev.modTime) || cur.size != prev.size):
			op = OpModify
		default:
			continue
		}
		p.debouncer.Add(FileEvent{Path: f, Operation: op, Timestamp: now})
	}
}

func snapshot(path string) (fileSnapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileSnapshot{}, nil
	}
	if err != nil {
		return fileSnapshot{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return fileSnapshot{exists: true, modTime: info.ModTime(), size: info.Size()}, nil
}

func (p *PollingWatcher) sendError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	select {
	case p.errors <- err:
	default:
		p.logger.Warn("watcher error dropped", slog.String("error", err.Error()))
	}
}

// Stop stops the polling watcher. Safe to call multiple times.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	p.debouncer.Stop()
	close(p.errors)
	return nil
}

// Events returns debounced batches of file events.
func (p *PollingWatcher) Events() <-chan []FileEvent {
	return p.debouncer.Output()
}

// Errors returns non-fatal polling errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}
