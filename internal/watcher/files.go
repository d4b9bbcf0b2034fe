package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNoFiles is returned when a watcher is created without any path.
var ErrNoFiles = errors.New("no files to watch")

// resolveFiles returns the absolute, cleaned, de-duplicated paths in input order.
func resolveFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	seen := make(map[string]struct{}, len(paths))
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve absolute path %q: %w", p, err)
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}
	return files, nil
}

// parentDirs returns the distinct parent directories of files.
func parentDirs(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
