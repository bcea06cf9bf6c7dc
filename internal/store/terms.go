package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/slugs"
	"github.com/fieldshift/fieldshift/internal/sqlutil"
)

const termColumns = `id, taxonomy, name, slug, parent`

// CreateTerm inserts a term. An empty slug is derived from the name.
// Returns ErrTermExists if the slug is already taken in the taxonomy.
func (d *DB) CreateTerm(name, taxonomy, slug string) (*model.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("term name is required")
	}
	if taxonomy == "" {
		return nil, fmt.Errorf("taxonomy is required")
	}
	if slug == "" {
		slug = slugs.ComponentSlug(name)
	}

	if existing, err := d.FindTermBySlug(slug, taxonomy); err == nil {
		return existing, fmt.Errorf("term '%s' in %s: %w", slug, taxonomy, ErrTermExists)
	} else if !errors.Is(err, ErrTermNotFound) {
		return nil, err
	}

	res, err := d.db.Exec(`INSERT INTO terms (taxonomy, name, slug) VALUES (?, ?, ?)`, taxonomy, name, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to insert term '%s': %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Term{ID: id, Taxonomy: taxonomy, Name: name, Slug: slug}, nil
}

// GetTerm returns a term by ID.
func (d *DB) GetTerm(id int64) (*model.Term, error) {
	return d.queryTerm(`SELECT `+termColumns+` FROM terms WHERE id = ?`, id)
}

// FindTermBySlug returns the term with the given slug in a taxonomy.
func (d *DB) FindTermBySlug(slug, taxonomy string) (*model.Term, error) {
	return d.queryTerm(`SELECT `+termColumns+` FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomy, slug)
}

// FindTermByName returns the first term with the given name in a taxonomy.
func (d *DB) FindTermByName(name, taxonomy string) (*model.Term, error) {
	return d.queryTerm(`SELECT `+termColumns+` FROM terms WHERE taxonomy = ? AND name = ? ORDER BY id LIMIT 1`, taxonomy, name)
}

// ListTerms returns all terms of a taxonomy ordered by name.
func (d *DB) ListTerms(taxonomy string) ([]model.Term, error) {
	rows, err := d.db.Query(`SELECT `+termColumns+` FROM terms WHERE taxonomy = ? ORDER BY name, id`, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (model.Term, error) {
		t, err := scanTerm(r)
		if err != nil {
			return model.Term{}, err
		}
		return *t, nil
	})
}

// EntityTermIDs returns the IDs of terms of a taxonomy attached to an entity.
func (d *DB) EntityTermIDs(entityID int64, taxonomy string) ([]int64, error) {
	if err := d.requireEntity(entityID); err != nil {
		return nil, err
	}
	rows, err := d.db.Query(`
		SELECT t.id FROM term_relationships r
		JOIN terms t ON t.id = r.term_id
		WHERE r.entity_id = ? AND t.taxonomy = ?
		ORDER BY t.id`, entityID, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity terms: %w", err)
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	})
}

// SetEntityTerms assigns terms of a taxonomy to an entity.
// Without appendTerms, existing assignments in that taxonomy are replaced.
func (d *DB) SetEntityTerms(entityID int64, taxonomy string, termIDs []int64, appendTerms bool) error {
	if err := d.requireEntity(entityID); err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if !appendTerms {
		if _, err := tx.Exec(`
			DELETE FROM term_relationships
			WHERE entity_id = ? AND term_id IN (SELECT id FROM terms WHERE taxonomy = ?)`,
			entityID, taxonomy); err != nil {
			return fmt.Errorf("failed to clear %s terms: %w", taxonomy, err)
		}
	}

	for _, termID := range termIDs {
		var termTax string
		err := tx.QueryRow(`SELECT taxonomy FROM terms WHERE id = ?`, termID).Scan(&termTax)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("term %d: %w", termID, ErrTermNotFound)
		}
		if err != nil {
			return err
		}
		if termTax != taxonomy {
			return fmt.Errorf("term %d belongs to %s, not %s", termID, termTax, taxonomy)
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO term_relationships (entity_id, term_id) VALUES (?, ?)`,
			entityID, termID); err != nil {
			return fmt.Errorf("failed to attach term %d: %w", termID, err)
		}
	}

	if err := touchEntity(tx, entityID); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) queryTerm(query string, args ...any) (*model.Term, error) {
	t, err := scanTerm(d.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTermNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read term: %w", err)
	}
	return t, nil
}

func scanTerm(r rowScanner) (*model.Term, error) {
	var t model.Term
	if err := r.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Parent); err != nil {
		return nil, err
	}
	return &t, nil
}
