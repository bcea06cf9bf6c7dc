package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`post_types: [post, report]
taxonomies: [category, report_type]
fields:
  pdf_url: {type: url}
  downloads:
    type: repeater
    sub_fields:
      url: {type: url}
  sections:
    type: flexible
    layouts:
      hero:
        heading: {type: text}
`))
	require.NoError(t, err)

	assert.True(t, s.HasPostType("report"))
	assert.False(t, s.HasPostType("page"))
	assert.True(t, s.HasTaxonomy("report_type"))

	typ, ok := s.FieldType("downloads")
	assert.True(t, ok)
	assert.Equal(t, "repeater", typ)
	_, ok = s.FieldType("missing")
	assert.False(t, ok)

	assert.Equal(t, FieldTypeText, s.Fields["sections"].Layouts["hero"]["heading"].Type)
	assert.True(t, s.AuditEnabled())
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse([]byte("audit: false\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"post", "page"}, s.PostTypes)
	assert.Equal(t, []string{"category", "post_tag"}, s.Taxonomies)
	assert.NotNil(t, s.Fields)
	assert.False(t, s.AuditEnabled())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown type", "fields:\n  a: {type: gallery}\n"},
		{"missing type", "fields:\n  a: {label: A}\n"},
		{"null definition", "fields:\n  a:\n"},
		{"bad sub field", "fields:\n  d:\n    type: repeater\n    sub_fields:\n      url: {type: nope}\n"},
		{"bad layout field", "fields:\n  s:\n    type: flexible\n    layouts:\n      hero:\n        h: {}\n"},
		{"empty taxonomy", "taxonomies: [category, '']\n"},
		{"empty post type", "post_types: ['  ']\n"},
		{"not yaml", "post_types: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadAndCreateDefault(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, s.HasPostType("post"))

	created, err := CreateDefault(dir)
	require.NoError(t, err)
	assert.True(t, created)

	s, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"post", "page"}, s.PostTypes)
	assert.Empty(t, s.Fields)

	created, err = CreateDefault(dir)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("fields:\n  a: {type: nope}\n"), 0o644))
	_, err = Load(dir)
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/s", ".fieldshift", "store.db"), StorePath("/s"))
	assert.Equal(t, filepath.Join("/s", ".fieldshift", "migration.log"), LogPath("/s"))
	assert.Equal(t, filepath.Join("/s", ".fieldshift", "audit.log"), AuditPath("/s"))
}
