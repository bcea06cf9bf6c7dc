package fields

import (
	"fmt"

	"github.com/spf13/cast"
)

// FieldBackend stores managed field values.
type FieldBackend interface {
	GetFieldValue(entityID int64, name string) (any, error)
	SetFieldValue(entityID int64, name string, value any) error
	DeleteFieldValue(entityID int64, name string) error
}

// Definitions supplies the declared type of each managed field.
type Definitions interface {
	FieldType(name string) (string, bool)
}

// Managed field types with special value handling.
const (
	managedLink          = "link"
	managedFeaturedImage = "featured-image"
)

// Managed reads and writes fields declared in the site's field definitions.
type Managed struct {
	backend FieldBackend
	defs    Definitions
}

// NewManaged creates a managed store backed by defs.
func NewManaged(backend FieldBackend, defs Definitions) *Managed {
	return &Managed{backend: backend, defs: defs}
}

// FieldType returns the declared type of a managed field.
func (m *Managed) FieldType(key string) (string, bool) {
	return m.defs.FieldType(key)
}

func (m *Managed) Get(entityID int64, key string) (any, error) {
	fieldType, err := m.definition(key)
	if err != nil {
		return nil, err
	}
	v, err := m.backend.GetFieldValue(entityID, key)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	switch fieldType {
	case managedLink:
		if link, ok := v.(map[string]any); ok {
			url, ok := link["url"]
			if !ok {
				return nil, fmt.Errorf("link field '%s' has no url: %w", key, ErrNotFound)
			}
			return url, nil
		}
	case managedFeaturedImage:
		if id, err := cast.ToInt64E(v); err == nil {
			return id, nil
		}
	}
	return v, nil
}

func (m *Managed) Set(entityID int64, key string, value any) error {
	fieldType, err := m.definition(key)
	if err != nil {
		return err
	}

	switch fieldType {
	case managedLink:
		if _, ok := value.(map[string]any); !ok {
			value = map[string]any{"url": value}
		}
	case managedFeaturedImage:
		id, err := AttachmentID(value)
		if err != nil {
			return fmt.Errorf("field '%s': %w", key, err)
		}
		value = id
	}
	return mapStoreErr(m.backend.SetFieldValue(entityID, key, value))
}

func (m *Managed) Delete(entityID int64, key string) error {
	if _, err := m.definition(key); err != nil {
		return err
	}
	return mapStoreErr(m.backend.DeleteFieldValue(entityID, key))
}

func (m *Managed) definition(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	t, ok := m.defs.FieldType(key)
	if !ok {
		return "", fmt.Errorf("managed field '%s' is not defined: %w", key, ErrUnsupportedKey)
	}
	return t, nil
}
