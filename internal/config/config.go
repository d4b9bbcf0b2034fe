package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the project-level configuration file.
const ProjectFileName = ".storytree.yaml"

// Config represents the complete storytree configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Sidebar SidebarConfig `yaml:"sidebar" json:"sidebar"`
	// ShowRoots is the deprecated top-level alias of Sidebar.ShowRoots.
	ShowRoots *bool          `yaml:"show_roots,omitempty" json:"show_roots,omitempty"`
	Features  FeaturesConfig `yaml:"features" json:"features"`
	Index     IndexConfig    `yaml:"index" json:"index"`
	Logging   LoggingConfig  `yaml:"logging" json:"logging"`
	Watch     WatchConfig    `yaml:"watch" json:"watch"`
}

// SidebarConfig configures how kind paths become sidebar nodes.
type SidebarConfig struct {
	// ShowRoots promotes the first kind segment to a root when unset or true.
	ShowRoots *bool `yaml:"show_roots,omitempty" json:"show_roots,omitempty"`
	// CollapsedRoots lists root ids that start collapsed.
	CollapsedRoots []string `yaml:"collapsed_roots" json:"collapsed_roots"`
}

// FeaturesConfig holds process-wide feature flags.
type FeaturesConfig struct {
	// WarnOnLegacyHierarchySeparator emits a one-time notice when kind
	// paths still use '.' or '|' and show_roots is not set. Nil means off.
	WarnOnLegacyHierarchySeparator *bool `yaml:"warn_on_legacy_hierarchy_separator" json:"warn_on_legacy_hierarchy_separator"`
}

// IndexConfig locates the story index documents.
type IndexConfig struct {
	// Path is the main index document.
	Path string `yaml:"path" json:"path"`
	// Refs maps composed ref names to their index documents.
	Refs map[string]string `yaml:"refs" json:"refs"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// WatchConfig configures `build --watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Sidebar: SidebarConfig{
			ShowRoots:      nil, // Unset: promote first segment of multi-segment kinds
			CollapsedRoots: []string{},
		},
		Features: FeaturesConfig{
			WarnOnLegacyHierarchySeparator: boolPtr(true),
		},
		Index: IndexConfig{
			Path: "index.json",
			Refs: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/storytree/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/storytree/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "storytree", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "storytree", "config.yaml")
	}
	return filepath.Join(home, ".config", "storytree", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var cfg Config
	if err := readYAML(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/storytree/config.yaml)
//  3. Project config (.storytree.yaml in dir)
//  4. Environment variables (STORYTREE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .storytree.yaml or .storytree.yml.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectFileName, ".storytree.yml"} {
		path := filepath.Join(dir, name)
		if !fileExists(path) {
			continue
		}
		var parsed Config
		if err := readYAML(path, &parsed); err != nil {
			return err
		}
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func readYAML(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Pointers distinguish "unset" from an explicit false.
	if other.Sidebar.ShowRoots != nil {
		c.Sidebar.ShowRoots = other.Sidebar.ShowRoots
	}
	if len(other.Sidebar.CollapsedRoots) > 0 {
		c.Sidebar.CollapsedRoots = other.Sidebar.CollapsedRoots
	}
	if other.ShowRoots != nil {
		c.ShowRoots = other.ShowRoots
	}

	if other.Features.WarnOnLegacyHierarchySeparator != nil {
		c.Features.WarnOnLegacyHierarchySeparator = other.Features.WarnOnLegacyHierarchySeparator
	}

	if other.Index.Path != "" {
		c.Index.Path = other.Index.Path
	}
	for name, path := range other.Index.Refs {
		if c.Index.Refs == nil {
			c.Index.Refs = make(map[string]string)
		}
		c.Index.Refs[name] = path
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

// applyEnvOverrides applies STORYTREE_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STORYTREE_SHOW_ROOTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Sidebar.ShowRoots = &b
		}
	}
	if v := os.Getenv("STORYTREE_COLLAPSED_ROOTS"); v != "" {
		c.Sidebar.CollapsedRoots = splitList(v)
	}
	if v := os.Getenv("STORYTREE_FEATURE_WARN_ON_LEGACY_HIERARCHY_SEPARATOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Features.WarnOnLegacyHierarchySeparator = &b
		}
	}
	if v := os.Getenv("STORYTREE_INDEX"); v != "" {
		c.Index.Path = v
	}
	if v := os.Getenv("STORYTREE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STORYTREE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("STORYTREE_WATCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %s", c.Logging.Format)
	}

	if _, err := c.WatchDebounce(); err != nil {
		return err
	}

	for name, path := range c.Index.Refs {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("index.refs has an entry with an empty name")
		}
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("index.refs.%s must name an index file", name)
		}
	}

	return nil
}

// WatchDebounce parses Watch.Debounce. An empty value means no debouncing.
func (c *Config) WatchDebounce() (time.Duration, error) {
	if c.Watch.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, fmt.Errorf("watch.debounce must be a duration like '200ms', got %s", c.Watch.Debounce)
	}
	if d < 0 {
		return 0, fmt.Errorf("watch.debounce must be non-negative, got %s", c.Watch.Debounce)
	}
	return d, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot walks up from startDir to the nearest directory holding
// a .storytree.yaml or a .git directory. If neither is found, the absolute
// startDir is returned.
func FindProjectRoot(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}
	if !dirExists(abs) {
		return "", fmt.Errorf("directory does not exist: %s", abs)
	}

	for dir := abs; ; {
		if fileExists(filepath.Join(dir, ProjectFileName)) || dirExists(filepath.Join(dir, ".git")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

func boolPtr(b bool) *bool {
	return &b
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
