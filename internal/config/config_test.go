package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigGetSitePath(t *testing.T) {
	cfg := &Config{
		DefaultSite: "blog",
		Sites: map[string]string{
			"blog":    "/sites/blog",
			"reports": "/sites/reports",
		},
	}

	tests := []struct {
		name    string
		site    string
		want    string
		wantErr bool
	}{
		{name: "named site", site: "reports", want: "/sites/reports"},
		{name: "default site", site: "", want: "/sites/blog"},
		{name: "unknown site", site: "shop", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.GetSitePath(tt.site)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got path %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("no default configured", func(t *testing.T) {
		empty := &Config{}
		if _, err := empty.GetSitePath(""); err == nil {
			t.Fatal("expected error when no default site is configured")
		}
	})
}

func TestSiteNamesSorted(t *testing.T) {
	cfg := &Config{Sites: map[string]string{"b": "/b", "a": "/a", "c": "/c"}}
	got := cfg.SiteNames()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestLogConfigWithDefaults(t *testing.T) {
	got := LogConfig{Level: "debug", MaxBackups: 7}.WithDefaults()

	if got.Level != "debug" {
		t.Errorf("level overridden: %q", got.Level)
	}
	if got.Format != DefaultLogFormat || got.Output != DefaultLogOutput {
		t.Errorf("unexpected format/output: %q/%q", got.Format, got.Output)
	}
	if got.MaxBackups != 7 || got.MaxSizeMB != DefaultMaxSizeMB || got.MaxAgeDays != DefaultMaxAgeDays {
		t.Errorf("unexpected rotation settings: %+v", got)
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `default_site = "blog"

[sites]
blog = "/sites/blog"

[log]
level = "warn"
format = "json"
output = "both"
max_size_mb = 5

[ui]
accent = "39"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.DefaultSite != "blog" || cfg.Sites["blog"] != "/sites/blog" {
		t.Errorf("unexpected sites: %+v", cfg)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" || cfg.Log.Output != "both" || cfg.Log.MaxSizeMB != 5 {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.UI.Accent != "39" {
		t.Errorf("expected accent 39, got %q", cfg.UI.Accent)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_site = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultPathHonorsEnv(t *testing.T) {
	t.Setenv("FIELDSHIFT_CONFIG", "/custom/config.toml")
	if got := DefaultPath(); got != "/custom/config.toml" {
		t.Errorf("expected env override, got %q", got)
	}
}
