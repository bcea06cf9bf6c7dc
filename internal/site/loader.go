package site

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fieldshift/fieldshift/internal/atomicfile"
)

// New returns a site definition with the built-in post types and taxonomies.
func New() *Site {
	return &Site{
		PostTypes:  []string{"post", "page"},
		Taxonomies: []string{"category", "post_tag"},
		Fields:     make(map[string]*FieldDefinition),
	}
}

// Load loads site.yaml from a site directory.
// Returns the default definition if the file doesn't exist.
func Load(sitePath string) (*Site, error) {
	path := filepath.Join(sitePath, FileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site file %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse site file %s: %w", path, err)
	}
	return s, nil
}

// Parse parses and validates site.yaml content.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Fields == nil {
		s.Fields = make(map[string]*FieldDefinition)
	}
	defaults := New()
	if len(s.PostTypes) == 0 {
		s.PostTypes = defaults.PostTypes
	}
	if len(s.Taxonomies) == 0 {
		s.Taxonomies = defaults.Taxonomies
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks field definitions and registered names.
func (s *Site) Validate() error {
	for _, tax := range s.Taxonomies {
		if strings.TrimSpace(tax) == "" {
			return fmt.Errorf("taxonomy names cannot be empty")
		}
	}
	for _, pt := range s.PostTypes {
		if strings.TrimSpace(pt) == "" {
			return fmt.Errorf("post type names cannot be empty")
		}
	}

	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := validateField(name, s.Fields[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateField(name string, def *FieldDefinition) error {
	if def == nil {
		return fmt.Errorf("field '%s' has no definition", name)
	}
	if def.Type == "" {
		return fmt.Errorf("field '%s' has no type", name)
	}
	if !IsKnownFieldType(def.Type) {
		return fmt.Errorf("field '%s' has unknown type '%s'", name, def.Type)
	}
	for sub, subDef := range def.SubFields {
		if err := validateField(name+"/"+sub, subDef); err != nil {
			return err
		}
	}
	for layout, subs := range def.Layouts {
		for sub, subDef := range subs {
			if err := validateField(name+"/"+layout+"/"+sub, subDef); err != nil {
				return err
			}
		}
	}
	return nil
}

const defaultSiteYAML = `# fieldshift site definition
#
# post_types: entity types entities may belong to
# taxonomies: vocabularies terms may be created in
# fields:     managed field definitions (name -> type)
#
# Field types: text, textarea, number, url, link, image, featured-image,
#              repeater, flexible, markdown, wysiwyg, select, true_false

post_types:
  - post
  - page

taxonomies:
  - category
  - post_tag

fields: {}
`

// CreateDefault writes a default site.yaml if none exists.
// Returns true when a file was created.
func CreateDefault(sitePath string) (bool, error) {
	path := filepath.Join(sitePath, FileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(sitePath, 0o755); err != nil {
		return false, fmt.Errorf("failed to create site directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, []byte(defaultSiteYAML), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return true, nil
}
