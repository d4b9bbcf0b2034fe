package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the directory for debug logs:
// $XDG_STATE_HOME/storytree/logs, or ~/.local/state/storytree/logs.
// Falls back to the temp directory if home directory is unavailable.
func DefaultLogDir() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "storytree", "logs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "storytree", "logs")
	}
	return filepath.Join(home, ".local", "state", "storytree", "logs")
}

// DefaultLogPath returns the debug log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "storytree.log")
}
