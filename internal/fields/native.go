package fields

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/store"
)

// Native keys address columns of the entity record itself.
const (
	NativeTitle         = "title"
	NativeContent       = "content"
	NativeExcerpt       = "excerpt"
	NativeSlug          = "slug"
	NativeStatus        = "status"
	NativeFeaturedImage = "featured-image"
)

var nativeColumns = map[string]string{
	NativeTitle:         store.ColumnTitle,
	NativeContent:       store.ColumnContent,
	NativeExcerpt:       store.ColumnExcerpt,
	NativeSlug:          store.ColumnSlug,
	NativeStatus:        store.ColumnStatus,
	NativeFeaturedImage: store.ColumnFeaturedImage,
}

// NativeKeys lists the keys the native store accepts.
func NativeKeys() []string {
	return []string{NativeTitle, NativeContent, NativeExcerpt, NativeSlug, NativeStatus, NativeFeaturedImage}
}

// EntityBackend is the entity record storage used by Native.
type EntityBackend interface {
	GetEntity(id int64) (*model.Entity, error)
	UpdateEntityColumn(id int64, column string, value any) error
}

// Native maps a fixed set of well-known keys to entity columns.
type Native struct {
	backend EntityBackend
}

// NewNative creates a native store.
func NewNative(backend EntityBackend) *Native {
	return &Native{backend: backend}
}

func (n *Native) Get(entityID int64, key string) (any, error) {
	if _, ok := nativeColumns[key]; !ok {
		return nil, fmt.Errorf("native field '%s': %w", key, ErrUnsupportedKey)
	}
	e, err := n.backend.GetEntity(entityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	switch key {
	case NativeTitle:
		return e.Title, nil
	case NativeContent:
		return e.Content, nil
	case NativeExcerpt:
		return e.Excerpt, nil
	case NativeSlug:
		return e.Slug, nil
	case NativeStatus:
		return e.Status, nil
	default:
		if e.FeaturedImage == 0 {
			return nil, fmt.Errorf("entity %d has no featured image: %w", entityID, ErrNotFound)
		}
		return e.FeaturedImage, nil
	}
}

func (n *Native) Set(entityID int64, key string, value any) error {
	column, ok := nativeColumns[key]
	if !ok {
		return fmt.Errorf("native field '%s': %w", key, ErrUnsupportedKey)
	}

	if key == NativeFeaturedImage {
		id, err := AttachmentID(value)
		if err != nil {
			return err
		}
		return mapStoreErr(n.backend.UpdateEntityColumn(entityID, column, id))
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Errorf("cannot store %T in native field '%s'", value, key)
	}
	return mapStoreErr(n.backend.UpdateEntityColumn(entityID, column, s))
}

func (n *Native) Delete(entityID int64, key string) error {
	column, ok := nativeColumns[key]
	if !ok {
		return fmt.Errorf("native field '%s': %w", key, ErrUnsupportedKey)
	}
	var zero any = ""
	if key == NativeFeaturedImage {
		zero = int64(0)
	}
	return mapStoreErr(n.backend.UpdateEntityColumn(entityID, column, zero))
}

// AttachmentID extracts an attachment ID from either a bare identifier or a
// one-element collection holding {id: identifier}.
func AttachmentID(value any) (int64, error) {
	switch v := value.(type) {
	case []any:
		if len(v) != 1 {
			return 0, fmt.Errorf("expected one image, got %d", len(v))
		}
		return AttachmentID(v[0])
	case map[string]any:
		id, ok := v["id"]
		if !ok {
			return 0, fmt.Errorf("image value has no 'id' key")
		}
		return AttachmentID(id)
	case bool:
		return 0, fmt.Errorf("invalid attachment id %v", v)
	}

	id, err := cast.ToInt64E(value)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid attachment id %v", value)
	}
	return id, nil
}

func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrValueNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
