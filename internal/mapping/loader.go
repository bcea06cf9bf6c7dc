package mapping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fieldshift/fieldshift/internal/fields"
)

// File is a mapping file.
//
//	name: reports
//	merge: true
//	rules:
//	  - from: {kind: managed, key: downloads, subtype: repeater}
//	    to:   {kind: managed, key: pdf_url, subtype: url}
//	  - "generic:legacy_title -> native:title"
type File struct {
	Name string `yaml:"name,omitempty"`

	// Merge is the default merge policy; nil leaves it to the caller.
	Merge *bool `yaml:"merge,omitempty"`

	Rules Set `yaml:"rules"`
}

// LoadFile reads and validates a mapping file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	return f, nil
}

// Parse parses and validates mapping file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if err := f.Rules.Normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Normalize validates store kinds and lowercases them in place.
// Empty keys are left for the engine to skip.
func (s Set) Normalize() error {
	for i := range s {
		for _, spec := range []*FieldSpec{&s[i].From, &s[i].To} {
			kind, err := fields.ParseKind(string(spec.Kind))
			if err != nil {
				return fmt.Errorf("rule %d: %w", i+1, err)
			}
			spec.Kind = kind
		}
	}
	return nil
}

// UnmarshalYAML accepts either the long {from, to} form or the shorthand string
// "kind:key[@subtype] -> kind:key[@subtype]".
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		rule, err := ParseRule(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*r = rule
		return nil
	}

	type plain Rule
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = Rule(p)
	return nil
}

// ParseRule parses the shorthand rule form. "->" and "=" both separate the sides.
func ParseRule(s string) (Rule, error) {
	from, to, ok := strings.Cut(s, "->")
	if !ok {
		from, to, ok = strings.Cut(s, "=")
	}
	if !ok {
		return Rule{}, fmt.Errorf("invalid rule %q (expected from -> to)", s)
	}

	fromSpec, err := ParseSpec(from)
	if err != nil {
		return Rule{}, err
	}
	toSpec, err := ParseSpec(to)
	if err != nil {
		return Rule{}, err
	}
	return Rule{From: fromSpec, To: toSpec}, nil
}

// ParseSpec parses "kind:key[@subtype]". A missing kind means generic.
func ParseSpec(s string) (FieldSpec, error) {
	s = strings.TrimSpace(s)
	var spec FieldSpec

	kindName, rest, ok := strings.Cut(s, ":")
	if !ok {
		kindName, rest = "", s
	}
	kind, err := fields.ParseKind(kindName)
	if err != nil {
		return FieldSpec{}, err
	}
	spec.Kind = kind

	if key, subtype, ok := strings.Cut(rest, "@"); ok {
		spec.Key = strings.TrimSpace(key)
		spec.Subtype = strings.TrimSpace(subtype)
	} else {
		spec.Key = strings.TrimSpace(rest)
	}
	return spec, nil
}
