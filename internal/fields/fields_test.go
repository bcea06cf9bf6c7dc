package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/store"
)

type defs map[string]string

func (d defs) FieldType(name string) (string, bool) {
	t, ok := d[name]
	return t, ok
}

func newTestSet(t *testing.T) (Set, *store.DB, int64) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	id, err := db.CreateEntity(model.Entity{Type: "post", Title: "Annual Report"})
	require.NoError(t, err)

	set := NewSet(db, defs{
		"cta":     "link",
		"hero":    "featured-image",
		"summary": "text",
	})
	return set, db, id
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"native", KindNative, false},
		{"Managed", KindManaged, false},
		{"generic", KindGeneric, false},
		{"", KindGeneric, false},
		{"acf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNativeStore(t *testing.T) {
	set, _, id := newTestSet(t)

	v, err := set.Native.Get(id, NativeTitle)
	require.NoError(t, err)
	assert.Equal(t, "Annual Report", v)

	require.NoError(t, set.Native.Set(id, NativeTitle, "Renamed"))
	v, err = set.Native.Get(id, NativeTitle)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", v)

	_, err = set.Native.Get(id, "menu_order")
	assert.ErrorIs(t, err, ErrUnsupportedKey)
	assert.ErrorIs(t, set.Native.Set(id, "menu_order", 1), ErrUnsupportedKey)

	assert.Error(t, set.Native.Set(id, NativeTitle, map[string]any{"a": 1}))
}

func TestNativeFeaturedImage(t *testing.T) {
	set, _, id := newTestSet(t)

	_, err := set.Native.Get(id, NativeFeaturedImage)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, set.Native.Set(id, NativeFeaturedImage, []any{map[string]any{"id": float64(77)}}))
	v, err := set.Native.Get(id, NativeFeaturedImage)
	require.NoError(t, err)
	assert.Equal(t, int64(77), v)

	require.NoError(t, set.Native.Delete(id, NativeFeaturedImage))
	_, err = set.Native.Get(id, NativeFeaturedImage)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagedLinkWrapping(t *testing.T) {
	set, db, id := newTestSet(t)

	require.NoError(t, set.Managed.Set(id, "cta", "https://example.com"))

	raw, err := db.GetFieldValue(id, "cta")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "https://example.com"}, raw)

	v, err := set.Managed.Get(id, "cta")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", v)
}

func TestManagedFeaturedImage(t *testing.T) {
	set, _, id := newTestSet(t)

	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"bare id", int64(12), 12},
		{"numeric string", "13", 13},
		{"collection", []any{map[string]any{"id": float64(14)}}, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, set.Managed.Set(id, "hero", tt.value))
			v, err := set.Managed.Get(id, "hero")
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	assert.Error(t, set.Managed.Set(id, "hero", []any{1, 2}))
	assert.Error(t, set.Managed.Set(id, "hero", true))
}

func TestManagedRequiresDefinition(t *testing.T) {
	set, _, id := newTestSet(t)

	_, err := set.Managed.Get(id, "undefined_field")
	assert.ErrorIs(t, err, ErrUnsupportedKey)

	_, err = set.Managed.Get(id, "summary")
	assert.ErrorIs(t, err, ErrNotFound)

	typed, ok := set.Managed.(Typed)
	require.True(t, ok)
	ft, ok := typed.FieldType("cta")
	assert.True(t, ok)
	assert.Equal(t, "link", ft)
}

func TestGenericStore(t *testing.T) {
	set, _, id := newTestSet(t)

	_, err := set.Generic.Get(id, "legacy_likes")
	assert.ErrorIs(t, err, ErrNotFound)

	nested := map[string]any{"count": float64(3), "users": []any{"a", "b"}}
	require.NoError(t, set.Generic.Set(id, "legacy_likes", nested))
	v, err := set.Generic.Get(id, "legacy_likes")
	require.NoError(t, err)
	assert.Equal(t, nested, v)

	require.NoError(t, set.Generic.Delete(id, "legacy_likes"))
	_, err = set.Generic.Get(id, "legacy_likes")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, set.Generic.Set(id, " padded", 1), ErrInvalidKey)
	assert.ErrorIs(t, set.Generic.Set(id, "", 1), ErrInvalidKey)
}

func TestAuditedRecordsMutations(t *testing.T) {
	set, _, id := newTestSet(t)

	var got []Mutation
	audited := set.Wrap(func(k Kind, st Store) Store {
		return Audited(k, st, func(m Mutation) { got = append(got, m) })
	})

	require.NoError(t, audited.Generic.Set(id, "views", float64(10)))
	require.NoError(t, audited.Generic.Set(id, "views", float64(11)))
	require.NoError(t, audited.Generic.Delete(id, "views"))
	assert.Error(t, audited.Native.Set(id, "bogus", "x"))

	require.Len(t, got, 3)
	assert.Equal(t, Mutation{Op: "set", Kind: KindGeneric, EntityID: id, Key: "views", New: float64(10)}, got[0])
	assert.Equal(t, float64(10), got[1].Old)
	assert.Equal(t, "delete", got[2].Op)

	typed, ok := audited.Managed.(Typed)
	require.True(t, ok)
	_, ok = typed.FieldType("cta")
	assert.True(t, ok)
}

func TestSetFor(t *testing.T) {
	set, _, _ := newTestSet(t)

	st, err := set.For(KindManaged)
	require.NoError(t, err)
	assert.Same(t, set.Managed, st)

	_, err = Set{}.For(KindNative)
	assert.Error(t, err)
}
