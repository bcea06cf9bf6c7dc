// Package testutil provides reusable test utilities for fieldshift tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/site"
	"github.com/fieldshift/fieldshift/internal/store"
)

// TestSite represents a temporary site for testing.
type TestSite struct {
	Path     string
	t        *testing.T
	siteYAML string
	files    map[string]string
}

// NewTestSite creates a new test site builder.
// Call Build() to create the actual site directory.
func NewTestSite(t *testing.T) *TestSite {
	t.Helper()
	return &TestSite{
		t:        t,
		siteYAML: ReportsSiteYAML(),
		files:    make(map[string]string),
	}
}

// WithSiteYAML sets the site.yaml content.
func (s *TestSite) WithSiteYAML(yaml string) *TestSite {
	s.siteYAML = yaml
	return s
}

// WithFile adds a file to the site. The path is relative to the site root.
func (s *TestSite) WithFile(path, content string) *TestSite {
	s.files[path] = content
	return s
}

// Build creates the site directory, its files and an empty store.
func (s *TestSite) Build() *TestSite {
	s.t.Helper()

	s.Path = s.t.TempDir()
	s.writeFile(site.FileName, s.siteYAML)
	for path, content := range s.files {
		s.writeFile(path, content)
	}

	db, err := store.Open(site.StorePath(s.Path))
	if err != nil {
		s.t.Fatalf("failed to create store: %v", err)
	}
	db.Close()
	return s
}

// WithStore opens the site store, runs fn and closes it again so the CLI can
// use the file afterwards.
func (s *TestSite) WithStore(fn func(db *store.DB)) {
	s.t.Helper()
	db, err := store.Open(site.StorePath(s.Path))
	if err != nil {
		s.t.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()
	fn(db)
}

// SeedEntity inserts an entity and returns its ID.
func (s *TestSite) SeedEntity(e model.Entity) int64 {
	s.t.Helper()
	var id int64
	s.WithStore(func(db *store.DB) {
		var err error
		if id, err = db.CreateEntity(e); err != nil {
			s.t.Fatalf("failed to seed entity: %v", err)
		}
	})
	return id
}

func (s *TestSite) writeFile(relPath, content string) {
	s.t.Helper()
	fullPath := filepath.Join(s.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		s.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the site.
func (s *TestSite) ReadFile(relPath string) string {
	s.t.Helper()
	content, err := os.ReadFile(filepath.Join(s.Path, relPath))
	if err != nil {
		s.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the site.
func (s *TestSite) FileExists(relPath string) bool {
	s.t.Helper()
	_, err := os.Stat(filepath.Join(s.Path, relPath))
	return err == nil
}

// ReportsSiteYAML returns a site.yaml with a report post type, a report_type
// taxonomy and a representative set of managed fields.
func ReportsSiteYAML() string {
	return `post_types: [post, page, report]
taxonomies: [category, post_tag, report_type]

fields:
  subtitle: {type: text}
  views: {type: text}
  view_count: {type: number}
  pdf_url: {type: url}
  cta: {type: link}
  hero_image: {type: featured-image}
  downloads:
    type: repeater
    sub_fields:
      url: {type: url}
  sections:
    type: flexible
    layouts:
      hero:
        heading: {type: text}
      text:
        body: {type: wysiwyg}
`
}
