// Package fields implements the three field stores a mapping rule can read from
// or write to: native entity columns, managed (site.yaml-defined) fields and
// generic metadata.
package fields

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects which Store a FieldSpec addresses.
type Kind string

const (
	KindNative  Kind = "native"
	KindManaged Kind = "managed"
	KindGeneric Kind = "generic"
)

// ParseKind validates a store kind name. An empty name means generic.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindNative:
		return KindNative, nil
	case KindManaged:
		return KindManaged, nil
	case KindGeneric, "":
		return KindGeneric, nil
	}
	return "", fmt.Errorf("unknown store kind '%s' (expected native, managed or generic)", s)
}

var (
	// ErrNotFound means the entity has no value under the key. It is an expected outcome.
	ErrNotFound = errors.New("field not found")
	// ErrUnsupportedKey means the store cannot address the key at all.
	ErrUnsupportedKey = errors.New("unsupported key")
	// ErrInvalidKey means the key is empty or malformed.
	ErrInvalidKey = errors.New("invalid key")
)

// Store reads and writes named fields on entities.
type Store interface {
	Get(entityID int64, key string) (any, error)
	Set(entityID int64, key string, value any) error
	Delete(entityID int64, key string) error
}

// Typed is implemented by stores that know the declared type of their fields.
type Typed interface {
	FieldType(key string) (string, bool)
}

// Set is the closed set of stores selected by Kind.
type Set struct {
	Native  Store
	Managed Store
	Generic Store
}

// For returns the store registered for a kind.
func (s Set) For(kind Kind) (Store, error) {
	var st Store
	switch kind {
	case KindNative:
		st = s.Native
	case KindManaged:
		st = s.Managed
	case KindGeneric:
		st = s.Generic
	default:
		return nil, fmt.Errorf("unknown store kind '%s'", kind)
	}
	if st == nil {
		return nil, fmt.Errorf("no %s store configured", kind)
	}
	return st, nil
}

func validateKey(key string) error {
	if key == "" || strings.TrimSpace(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Backend is the storage all three stores are built on.
type Backend interface {
	EntityBackend
	FieldBackend
	MetaBackend
}

// NewSet builds the native, managed and generic stores over one backend.
func NewSet(b Backend, defs Definitions) Set {
	return Set{
		Native:  NewNative(b),
		Managed: NewManaged(b, defs),
		Generic: NewGeneric(b),
	}
}

// Wrap returns a copy of the set with every store passed through fn.
func (s Set) Wrap(fn func(Kind, Store) Store) Set {
	return Set{
		Native:  fn(KindNative, s.Native),
		Managed: fn(KindManaged, s.Managed),
		Generic: fn(KindGeneric, s.Generic),
	}
}
