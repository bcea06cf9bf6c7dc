// Package terms maps taxonomy term assignments from one taxonomy to another by slug.
package terms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/store"
)

// ErrPrecondition is returned when a mapper is constructed with invalid arguments.
var ErrPrecondition = errors.New("precondition failed")

// Registry knows which taxonomies exist.
type Registry interface {
	HasTaxonomy(name string) bool
}

// Reader is the read-only term storage the mapper needs.
type Reader interface {
	GetTerm(id int64) (*model.Term, error)
	FindTermBySlug(slug, taxonomy string) (*model.Term, error)
	EntityTermIDs(entityID int64, taxonomy string) ([]int64, error)
}

// Mapping is the outcome for one source term. TermID is the destination term when
// Matched, otherwise the unmatched source term.
type Mapping struct {
	SourceTermID int64  `json:"source_term_id"`
	TermID       int64  `json:"term_id"`
	Slug         string `json:"slug"`
	Matched      bool   `json:"matched"`
}

// Mapper matches the terms of one entity in From against terms in To.
// It never creates terms.
type Mapper struct {
	reader   Reader
	From     string
	To       string
	EntityID int64

	mappings []Mapping
	resolved bool
}

// New validates the arguments and returns a mapper. No term storage is read
// until the mappings are requested.
func New(reg Registry, reader Reader, from, to string, entityID int64) (*Mapper, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)

	switch {
	case from == "" || to == "":
		return nil, fmt.Errorf("%w: taxonomy names are required", ErrPrecondition)
	case entityID == 0:
		return nil, fmt.Errorf("%w: entity id is required", ErrPrecondition)
	case !reg.HasTaxonomy(from):
		return nil, fmt.Errorf("%w: taxonomy '%s' does not exist", ErrPrecondition, from)
	case !reg.HasTaxonomy(to):
		return nil, fmt.Errorf("%w: taxonomy '%s' does not exist", ErrPrecondition, to)
	}

	return &Mapper{reader: reader, From: from, To: to, EntityID: entityID}, nil
}

// Mappings returns the match outcome of every source term, in term ID order.
func (m *Mapper) Mappings() ([]Mapping, error) {
	if m.resolved {
		return m.mappings, nil
	}

	ids, err := m.reader.EntityTermIDs(m.EntityID, m.From)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s terms of entity %d: %w", m.From, m.EntityID, err)
	}

	mappings := make([]Mapping, 0, len(ids))
	for _, id := range ids {
		src, err := m.reader.GetTerm(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read term %d: %w", id, err)
		}

		dest, err := m.reader.FindTermBySlug(src.Slug, m.To)
		switch {
		case err == nil:
			mappings = append(mappings, Mapping{SourceTermID: id, TermID: dest.ID, Slug: src.Slug, Matched: true})
		case errors.Is(err, store.ErrTermNotFound):
			mappings = append(mappings, Mapping{SourceTermID: id, TermID: id, Slug: src.Slug})
		default:
			return nil, fmt.Errorf("failed to look up '%s' in %s: %w", src.Slug, m.To, err)
		}
	}

	m.mappings = mappings
	m.resolved = true
	return mappings, nil
}

// MappedTermIDs returns destination term IDs whose slug matched a source term.
func (m *Mapper) MappedTermIDs() ([]int64, error) {
	return m.ids(true)
}

// UnmappedTermIDs returns source term IDs with no slug match in the destination.
func (m *Mapper) UnmappedTermIDs() ([]int64, error) {
	return m.ids(false)
}

func (m *Mapper) ids(matched bool) ([]int64, error) {
	mappings, err := m.Mappings()
	if err != nil {
		return nil, err
	}
	var out []int64
	for _, mp := range mappings {
		if mp.Matched == matched {
			out = append(out, mp.TermID)
		}
	}
	return out, nil
}
