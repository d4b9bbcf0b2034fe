// Package ui renders built story hashes for the terminal: an indented tree
// preview and a per-ref summary.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Config configures the renderers.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	ShowIDs    bool
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces unstyled output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithShowIDs appends item ids to tree labels.
func WithShowIDs(show bool) ConfigOption {
	return func(c *Config) {
		c.ShowIDs = show
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Plain reports whether output should be unstyled: forced, NO_COLOR, CI,
// or not a terminal.
func (c Config) Plain() bool {
	return c.ForcePlain || c.NoColor || DetectNoColor() || DetectCI() || !IsTTY(c.Output)
}

// Styles returns the styles matching Plain.
func (c Config) Styles() Styles {
	return GetStyles(c.Plain())
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
