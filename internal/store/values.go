package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Field values are kept as JSON so nested repeater/flexible data survives a round trip.
// Meta and managed fields share the same layout and differ only by table.

type valueTable struct {
	table  string
	keyCol string
}

var (
	metaTable  = valueTable{table: "entity_meta", keyCol: "key"}
	fieldTable = valueTable{table: "entity_fields", keyCol: "name"}
)

// GetMeta returns a metadata value. Missing keys return ErrValueNotFound.
func (d *DB) GetMeta(entityID int64, key string) (any, error) {
	return d.getValue(metaTable, entityID, key)
}

// SetMeta stores a metadata value, replacing any previous value.
func (d *DB) SetMeta(entityID int64, key string, value any) error {
	return d.setValue(metaTable, entityID, key, value)
}

// DeleteMeta removes a metadata value. Deleting a missing key is not an error.
func (d *DB) DeleteMeta(entityID int64, key string) error {
	return d.deleteValue(metaTable, entityID, key)
}

// GetFieldValue returns a managed field value. Missing fields return ErrValueNotFound.
func (d *DB) GetFieldValue(entityID int64, name string) (any, error) {
	return d.getValue(fieldTable, entityID, name)
}

// SetFieldValue stores a managed field value.
func (d *DB) SetFieldValue(entityID int64, name string, value any) error {
	return d.setValue(fieldTable, entityID, name, value)
}

// DeleteFieldValue removes a managed field value.
func (d *DB) DeleteFieldValue(entityID int64, name string) error {
	return d.deleteValue(fieldTable, entityID, name)
}

func (d *DB) getValue(t valueTable, entityID int64, key string) (any, error) {
	var raw string
	err := d.db.QueryRow(
		`SELECT value FROM `+t.table+` WHERE entity_id = ? AND `+t.keyCol+` = ?`,
		entityID, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		if err := d.requireEntity(entityID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s '%s' on entity %d: %w", t.keyCol, key, entityID, ErrValueNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s '%s': %w", t.keyCol, key, err)
	}
	return decodeValue(raw)
}

func (d *DB) setValue(t valueTable, entityID int64, key string, value any) error {
	if err := d.requireEntity(entityID); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for '%s': %w", key, err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO `+t.table+` (entity_id, `+t.keyCol+`, value) VALUES (?, ?, ?)`,
		entityID, key, string(raw),
	); err != nil {
		return fmt.Errorf("failed to write %s '%s': %w", t.keyCol, key, err)
	}
	if err := touchEntity(tx, entityID); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) deleteValue(t valueTable, entityID int64, key string) error {
	if err := d.requireEntity(entityID); err != nil {
		return err
	}
	_, err := d.db.Exec(
		`DELETE FROM `+t.table+` WHERE entity_id = ? AND `+t.keyCol+` = ?`,
		entityID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s '%s': %w", t.keyCol, key, err)
	}
	return nil
}

func decodeValue(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to decode stored value: %w", err)
	}
	return v, nil
}

func touchEntity(e execer, entityID int64) error {
	if _, err := e.Exec(`UPDATE entities SET modified_at = ? WHERE id = ?`, time.Now().Unix(), entityID); err != nil {
		return fmt.Errorf("failed to touch entity %d: %w", entityID, err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
