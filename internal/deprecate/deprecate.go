// Package deprecate reports advisory deprecation notices, each call site at
// most once per Notifier.
package deprecate

import (
	"log/slog"
	"sync"
)

// Notifier logs the first notice for every site and drops the rest.
// It is safe for concurrent use.
type Notifier struct {
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a Notifier writing to logger, or slog.Default() when nil.
func New(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Notify logs message at warn level unless site was already reported.
func (n *Notifier) Notify(site, message string) {
	n.mu.Lock()
	if _, ok := n.seen[site]; ok {
		n.mu.Unlock()
		return
	}
	n.seen[site] = struct{}{}
	n.mu.Unlock()

	n.logger.Warn("deprecation", slog.String("site", site), slog.String("message", message))
}

// Notified reports whether site has been reported.
func (n *Notifier) Notified(site string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.seen[site]
	return ok
}

// Reset forgets every reported site.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	clear(n.seen)
}
