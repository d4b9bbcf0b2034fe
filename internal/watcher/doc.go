// Package watcher watches a fixed set of files and reports debounced change
// batches.
//
// Two strategies are available:
//   - Primary: fsnotify on the parent directories, filtered to the watched names
//   - Fallback: polling file metadata where fsnotify fails (network mounts, Docker volumes)
//
// Watching the parent directory keeps events flowing when editors or build
// tools replace a file by renaming a temporary file over it.
//
// Usage:
//
//	w, err := watcher.New([]string{"storybook-static/index.json"}, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx) }()
//
//	for batch := range w.Events() {
//	    // rebuild
//	}
package watcher
