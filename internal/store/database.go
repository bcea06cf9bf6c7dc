// Package store handles the SQLite database holding a site's entities,
// field values and taxonomy terms.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the SQLite store handle.
type DB struct {
	db *sql.DB
}

var (
	// ErrEntityNotFound indicates the requested entity ID does not exist.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrValueNotFound indicates the entity has no value stored under the key.
	ErrValueNotFound = errors.New("value not found")
	// ErrTermNotFound indicates no term matched the lookup.
	ErrTermNotFound = errors.New("term not found")
	// ErrTermExists indicates a term with the same slug already exists in the taxonomy.
	ErrTermExists = errors.New("term already exists")
)

// CurrentDBVersion is the current store schema version.
const CurrentDBVersion = 1

// Open opens or creates the store at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	d := &DB{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenInMemory opens an in-memory store (for testing).
func OpenInMemory() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	d := &DB{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the store.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS store_info (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'publish',
			title TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			featured_image INTEGER NOT NULL DEFAULT 0,
			modified_at INTEGER
		);

		-- Free-form metadata (generic store kind)
		CREATE TABLE IF NOT EXISTS entity_meta (
			entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (entity_id, key)
		);

		-- Values of fields declared in site.yaml (managed store kind)
		CREATE TABLE IF NOT EXISTS entity_fields (
			entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (entity_id, name)
		);

		CREATE TABLE IF NOT EXISTS terms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taxonomy TEXT NOT NULL,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			parent INTEGER NOT NULL DEFAULT 0,
			UNIQUE (taxonomy, slug)
		);

		CREATE TABLE IF NOT EXISTS term_relationships (
			entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
			term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
			PRIMARY KEY (entity_id, term_id)
		);

		CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);
		CREATE INDEX IF NOT EXISTS idx_terms_taxonomy_name ON terms(taxonomy, name);
		CREATE INDEX IF NOT EXISTS idx_term_relationships_term ON term_relationships(term_id);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize store schema: %w", err)
	}

	_, err := d.db.Exec(`INSERT OR REPLACE INTO store_info (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentDBVersion))
	if err != nil {
		return fmt.Errorf("failed to set store version: %w", err)
	}
	return nil
}

func (d *DB) entityExists(id int64) (bool, error) {
	var one int
	err := d.db.QueryRow(`SELECT 1 FROM entities WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) requireEntity(id int64) error {
	ok, err := d.entityExists(id)
	if err != nil {
		return fmt.Errorf("failed to look up entity %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("entity %d: %w", id, ErrEntityNotFound)
	}
	return nil
}
