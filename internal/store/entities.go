package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/slugs"
	"github.com/fieldshift/fieldshift/internal/sqlutil"
)

// Column names accepted by UpdateEntityColumn.
const (
	ColumnTitle         = "title"
	ColumnContent       = "content"
	ColumnExcerpt       = "excerpt"
	ColumnSlug          = "slug"
	ColumnStatus        = "status"
	ColumnFeaturedImage = "featured_image"
)

var writableColumns = map[string]bool{
	ColumnTitle:         true,
	ColumnContent:       true,
	ColumnExcerpt:       true,
	ColumnSlug:          true,
	ColumnStatus:        true,
	ColumnFeaturedImage: true,
}

const entityColumns = `id, type, status, title, slug, content, excerpt, featured_image`

// CreateEntity inserts a new entity and returns its ID.
// An empty slug is derived from the title; an empty status defaults to "publish".
func (d *DB) CreateEntity(e model.Entity) (int64, error) {
	if e.Type == "" {
		return 0, fmt.Errorf("entity type is required")
	}
	if e.Status == "" {
		e.Status = model.StatusPublish
	}
	if e.Slug == "" && e.Title != "" {
		e.Slug = slugs.ComponentSlug(e.Title)
	}

	res, err := d.db.Exec(`
		INSERT INTO entities (type, status, title, slug, content, excerpt, featured_image, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Type, e.Status, e.Title, e.Slug, e.Content, e.Excerpt, e.FeaturedImage, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert entity: %w", err)
	}
	return res.LastInsertId()
}

// GetEntity returns the entity with the given ID.
func (d *DB) GetEntity(id int64) (*model.Entity, error) {
	row := d.db.QueryRow(`SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entity %d: %w", id, err)
	}
	return e, nil
}

// ListEntities returns entities ordered by ID, optionally filtered by post types.
func (d *DB) ListEntities(postTypes ...string) ([]model.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities`
	var args []any
	if len(postTypes) > 0 {
		var ph string
		ph, args = sqlutil.InClauseArgs(postTypes)
		query += ` WHERE type IN (` + ph + `)`
	}
	query += ` ORDER BY id`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (model.Entity, error) {
		e, err := scanEntity(r)
		if err != nil {
			return model.Entity{}, err
		}
		return *e, nil
	})
}

// UpdateEntityColumn overwrites one column of an entity record.
func (d *DB) UpdateEntityColumn(id int64, column string, value any) error {
	if !writableColumns[column] {
		return fmt.Errorf("column '%s' is not writable", column)
	}
	res, err := d.db.Exec(`UPDATE entities SET `+column+` = ?, modified_at = ? WHERE id = ?`,
		value, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update entity %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// SetEntityType changes the post type of an entity.
func (d *DB) SetEntityType(id int64, postType string) error {
	if postType == "" {
		return fmt.Errorf("entity type is required")
	}
	res, err := d.db.Exec(`UPDATE entities SET type = ?, modified_at = ? WHERE id = ?`,
		postType, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update entity %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(r rowScanner) (*model.Entity, error) {
	var e model.Entity
	if err := r.Scan(&e.ID, &e.Type, &e.Status, &e.Title, &e.Slug, &e.Content, &e.Excerpt, &e.FeaturedImage); err != nil {
		return nil, err
	}
	return &e, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	return nil
}
