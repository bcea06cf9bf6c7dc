// Package site handles the site.yaml definition: registered post types,
// taxonomies and managed field definitions.
package site

import (
	"path/filepath"
	"slices"
)

// FileName is the site definition file at the root of a site directory.
const FileName = "site.yaml"

// DataDir is the directory holding the store and logs, relative to the site root.
const DataDir = ".fieldshift"

// FieldType is the type tag of a managed field.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeNumber        FieldType = "number"
	FieldTypeURL           FieldType = "url"
	FieldTypeLink          FieldType = "link"
	FieldTypeImage         FieldType = "image"
	FieldTypeFeaturedImage FieldType = "featured-image"
	FieldTypeRepeater      FieldType = "repeater"
	FieldTypeFlexible      FieldType = "flexible"
	FieldTypeMarkdown      FieldType = "markdown"
	FieldTypeWysiwyg       FieldType = "wysiwyg"
	FieldTypeSelect        FieldType = "select"
	FieldTypeBoolean       FieldType = "true_false"
)

var knownFieldTypes = []FieldType{
	FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeURL, FieldTypeLink,
	FieldTypeImage, FieldTypeFeaturedImage, FieldTypeRepeater, FieldTypeFlexible,
	FieldTypeMarkdown, FieldTypeWysiwyg, FieldTypeSelect, FieldTypeBoolean,
}

// IsKnownFieldType reports whether t is a supported managed field type.
func IsKnownFieldType(t FieldType) bool {
	return slices.Contains(knownFieldTypes, t)
}

// Site is the parsed site.yaml.
type Site struct {
	PostTypes  []string                    `yaml:"post_types"`
	Taxonomies []string                    `yaml:"taxonomies"`
	Fields     map[string]*FieldDefinition `yaml:"fields"`

	// Audit toggles the mutation audit log (default: true).
	Audit *bool `yaml:"audit,omitempty"`
}

// FieldDefinition defines one managed field.
type FieldDefinition struct {
	Type  FieldType `yaml:"type"`
	Label string    `yaml:"label,omitempty"`

	// SubFields describes the columns of a repeater row.
	SubFields map[string]*FieldDefinition `yaml:"sub_fields,omitempty"`

	// Layouts describes the sub fields of each flexible-content layout.
	Layouts map[string]map[string]*FieldDefinition `yaml:"layouts,omitempty"`
}

// HasTaxonomy reports whether the taxonomy is registered.
func (s *Site) HasTaxonomy(name string) bool {
	return slices.Contains(s.Taxonomies, name)
}

// HasPostType reports whether the post type is registered.
func (s *Site) HasPostType(name string) bool {
	return slices.Contains(s.PostTypes, name)
}

// FieldType returns the declared type of a managed field.
func (s *Site) FieldType(name string) (string, bool) {
	def, ok := s.Fields[name]
	if !ok || def == nil {
		return "", false
	}
	return string(def.Type), true
}

// AuditEnabled returns whether mutations should be written to the audit log.
func (s *Site) AuditEnabled() bool {
	return s.Audit == nil || *s.Audit
}

// StorePath returns the SQLite store path for a site directory.
func StorePath(sitePath string) string {
	return filepath.Join(sitePath, DataDir, "store.db")
}

// LogPath returns the default migration log path for a site directory.
func LogPath(sitePath string) string {
	return filepath.Join(sitePath, DataDir, "migration.log")
}

// AuditPath returns the audit log path for a site directory.
func AuditPath(sitePath string) string {
	return filepath.Join(sitePath, DataDir, "audit.log")
}
