package terms

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/store"
)

// Writer is the term storage needed to create terms and assign them.
type Writer interface {
	Reader
	FindTermByName(name, taxonomy string) (*model.Term, error)
	CreateTerm(name, taxonomy, slug string) (*model.Term, error)
	SetEntityTerms(entityID int64, taxonomy string, termIDs []int64, appendTerms bool) error
}

// Options controls a term migration.
type Options struct {
	// DestEntityID receives the terms; 0 means the mapper's entity.
	DestEntityID int64
	// Append keeps the destination's existing terms instead of replacing them.
	Append bool
	DryRun bool
}

// Outcome summarizes a term migration.
type Outcome struct {
	EntityID int64   `json:"entity_id"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Mapped   []int64 `json:"mapped"`
	// Created holds destination terms made (or reused by name) for unmapped source terms.
	Created  []int64 `json:"created"`
	Assigned []int64 `json:"assigned"`
	// WouldCreate holds the names of terms a dry run would create; they have no IDs yet.
	WouldCreate []string        `json:"would_create,omitempty"`
	Notices     []notice.Notice `json:"notices"`
}

// AssignCount is the number of terms the destination receives, counting the
// terms a dry run would create.
func (o *Outcome) AssignCount() int {
	return len(o.Assigned) + len(o.WouldCreate)
}

// Migrate creates the unmapped terms in the destination taxonomy and assigns the
// mapped and created terms to the destination entity in one operation.
// Failures creating individual terms are reported as notices and skipped.
func Migrate(w Writer, m *Mapper, opts Options) (*Outcome, error) {
	dest := opts.DestEntityID
	if dest == 0 {
		dest = m.EntityID
	}

	mappings, err := m.Mappings()
	if err != nil {
		return nil, err
	}

	out := &Outcome{EntityID: dest, From: m.From, To: m.To}
	for _, mp := range mappings {
		if mp.Matched {
			out.Mapped = append(out.Mapped, mp.TermID)
			out.Notices = append(out.Notices, notice.Successf("term '%s' matched %s term %d", mp.Slug, m.To, mp.TermID))
			continue
		}

		term, wouldCreate, n := ensureTerm(w, mp.SourceTermID, m.To, opts.DryRun)
		out.Notices = append(out.Notices, n)
		switch {
		case term != nil:
			out.Created = append(out.Created, term.ID)
		case wouldCreate != "" && !slices.Contains(out.WouldCreate, wouldCreate):
			// A second source term with the same name reuses the first one's creation.
			out.WouldCreate = append(out.WouldCreate, wouldCreate)
		}
	}

	out.Assigned = union(out.Mapped, out.Created)
	if out.AssignCount() == 0 {
		out.Notices = append(out.Notices, notice.Warningf("entity %d has no %s terms to assign", m.EntityID, m.From).
			WithCode(notice.CodeNothingToAssign))
		return out, nil
	}

	if opts.DryRun {
		out.Notices = append(out.Notices, notice.Successf("would assign %d %s terms to entity %d", out.AssignCount(), m.To, dest))
		return out, nil
	}

	if err := w.SetEntityTerms(dest, m.To, out.Assigned, opts.Append); err != nil {
		out.Notices = append(out.Notices, notice.Errorf("failed to assign %s terms to entity %d: %v", m.To, dest, err).
			WithCode(notice.CodeAssignFailed))
		return out, nil
	}
	verb := "replaced"
	if opts.Append {
		verb = "appended"
	}
	out.Notices = append(out.Notices, notice.Successf("%s %s terms of entity %d with %d terms", verb, m.To, dest, len(out.Assigned)))
	return out, nil
}

// ensureTerm finds or creates the destination counterpart of a source term.
// A destination term with the same name is reused rather than duplicated.
// In a dry run nothing is created; the name of the term that would be is returned.
func ensureTerm(w Writer, sourceID int64, taxonomy string, dryRun bool) (*model.Term, string, notice.Notice) {
	src, err := w.GetTerm(sourceID)
	if err != nil {
		return nil, "", notice.Errorf("failed to read term %d: %v", sourceID, err).WithCode(notice.CodeTermFailed)
	}

	existing, err := w.FindTermByName(src.Name, taxonomy)
	if err == nil {
		return existing, "", notice.Warningf("term '%s' reused existing %s term %d with slug '%s'", src.Slug, taxonomy, existing.ID, existing.Slug).
			WithCode(notice.CodeTermReused)
	}
	if !errors.Is(err, store.ErrTermNotFound) {
		return nil, "", notice.Errorf("failed to look up term '%s' in %s: %v", src.Name, taxonomy, err).WithCode(notice.CodeTermFailed)
	}

	if dryRun {
		return nil, src.Name, notice.Successf("would create %s term '%s'", taxonomy, src.Slug)
	}

	created, err := w.CreateTerm(src.Name, taxonomy, src.Slug)
	if errors.Is(err, store.ErrTermExists) && created != nil {
		return created, "", notice.Warningf("term '%s' already existed in %s", src.Slug, taxonomy).WithCode(notice.CodeTermReused)
	}
	if err != nil {
		return nil, "", notice.Errorf("failed to create %s term '%s': %v", taxonomy, src.Slug, err).WithCode(notice.CodeTermFailed)
	}
	return created, "", notice.Successf("created %s term '%s' (%d)", taxonomy, created.Slug, created.ID)
}

func union(a, b []int64) []int64 {
	seen := make(map[int64]bool, len(a)+len(b))
	var out []int64
	for _, ids := range [][]int64{a, b} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// String renders an outcome summary for logs.
func (o *Outcome) String() string {
	return fmt.Sprintf("%s -> %s on entity %d: %d mapped, %d created, %d assigned",
		o.From, o.To, o.EntityID, len(o.Mapped), len(o.Created)+len(o.WouldCreate), o.AssignCount())
}
