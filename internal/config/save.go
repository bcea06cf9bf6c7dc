package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fieldshift/fieldshift/internal/atomicfile"
)

type persistedConfig struct {
	DefaultSite *string              `toml:"default_site,omitempty"`
	Sites       map[string]string    `toml:"sites,omitempty"`
	Log         *LogConfig           `toml:"log,omitempty"`
	UI          *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent *string `toml:"accent,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{DefaultSite: nonEmptyPtr(cfg.DefaultSite)}
	if len(cfg.Sites) > 0 {
		out.Sites = cfg.Sites
	}
	if cfg.Log != (LogConfig{}) {
		log := cfg.Log
		out.Log = &log
	}
	if accent := nonEmptyPtr(cfg.UI.Accent); accent != nil {
		out.UI = &persistedUISettings{Accent: accent}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}

// RegisterSite adds or replaces a named site and saves the config to path.
// The first registered site becomes the default.
func RegisterSite(path, name, sitePath string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadFrom(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cfg.Sites == nil {
		cfg.Sites = make(map[string]string)
	}
	cfg.Sites[name] = sitePath
	if cfg.DefaultSite == "" {
		cfg.DefaultSite = name
	}

	if err := SaveTo(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
