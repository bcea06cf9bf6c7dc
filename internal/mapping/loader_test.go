package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldshift/fieldshift/internal/fields"
)

func TestParseMappingFile(t *testing.T) {
	data := []byte(`
name: reports
merge: true
rules:
  - from: {kind: Managed, key: downloads, subtype: repeater}
    to: {kind: managed, key: pdf_url, subtype: url}
  - "generic:legacy_title -> native:title"
  - from: {kind: managed, key: sections/hero/heading, all: true}
    to: {key: headings}
`)
	f, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "reports", f.Name)
	require.NotNil(t, f.Merge)
	assert.True(t, *f.Merge)
	require.Len(t, f.Rules, 3)

	assert.Equal(t, FieldSpec{Kind: fields.KindManaged, Key: "downloads", Subtype: "repeater"}, f.Rules[0].From)
	assert.Equal(t, Rule{From: spec(fields.KindGeneric, "legacy_title"), To: spec(fields.KindNative, "title")}, f.Rules[1])
	assert.True(t, f.Rules[2].From.All)
	assert.Equal(t, fields.KindGeneric, f.Rules[2].To.Kind)
}

func TestParseMappingFileErrors(t *testing.T) {
	_, err := Parse([]byte(`rules: [{from: {kind: acf, key: a}, to: {kind: native, key: title}}]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`rules: ["no separator here"]`))
	assert.Error(t, err)
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in   string
		want Rule
	}{
		{"managed:views@text -> managed:view_num@number", Rule{
			From: FieldSpec{Kind: fields.KindManaged, Key: "views", Subtype: "text"},
			To:   FieldSpec{Kind: fields.KindManaged, Key: "view_num", Subtype: "number"},
		}},
		{"old_key=native:title", Rule{From: spec(fields.KindGeneric, "old_key"), To: spec(fields.KindNative, "title")}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRule(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - a -> native:title\n"), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Nil(t, f.Merge)
	assert.Len(t, f.Rules, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
