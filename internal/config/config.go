// Package config handles the global fieldshift configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Config represents the global fieldshift configuration.
type Config struct {
	// DefaultSite is the name of the site used when no --site flag is given.
	DefaultSite string `toml:"default_site"`

	// Sites maps site names to their directories.
	Sites map[string]string `toml:"sites"`

	Log LogConfig `toml:"log"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// LogConfig controls the operational migration log.
type LogConfig struct {
	// Level is a logrus level name (debug, info, warn, error).
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`

	// Output is "console", "file" or "both". Defaults to "file".
	Output string `toml:"output"`

	// File overrides the default <site>/.fieldshift/migration.log.
	File string `toml:"file"`

	MaxSizeMB  int  `toml:"max_size_mb"`
	MaxBackups int  `toml:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days"`
	Compress   bool `toml:"compress"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or a hex color ("#RRGGBB").
	Accent string `toml:"accent"`
}

// Default log settings applied when a value is left unset.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultLogOutput  = "file"
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// WithDefaults returns a copy of the log config with unset values filled in.
func (l LogConfig) WithDefaults() LogConfig {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	if l.Output == "" {
		l.Output = DefaultLogOutput
	}
	if l.MaxSizeMB <= 0 {
		l.MaxSizeMB = DefaultMaxSizeMB
	}
	if l.MaxBackups <= 0 {
		l.MaxBackups = DefaultMaxBackups
	}
	if l.MaxAgeDays <= 0 {
		l.MaxAgeDays = DefaultMaxAgeDays
	}
	return l
}

// GetSitePath returns the path for a named site.
// If name is empty, returns the default site path.
func (c *Config) GetSitePath(name string) (string, error) {
	if name == "" {
		name = c.DefaultSite
	}
	if name == "" {
		return "", fmt.Errorf("no default site configured")
	}
	if path, ok := c.Sites[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("site '%s' not found in config", name)
}

// SiteNames returns configured site names in sorted order.
func (c *Config) SiteNames() []string {
	names := make([]string, 0, len(c.Sites))
	for name := range c.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// FIELDSHIFT_CONFIG wins, then ~/.config/fieldshift/config.toml, then the
// OS-specific config dir.
func DefaultPath() string {
	if p := os.Getenv("FIELDSHIFT_CONFIG"); p != "" {
		return p
	}

	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "fieldshift", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "fieldshift", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}
