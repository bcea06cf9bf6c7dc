package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldshift/fieldshift/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fieldshift", "store.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an existing store keeps the schema.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.CreateEntity(model.Entity{Type: "post", Title: "Hello"})
	assert.NoError(t, err)
}

func TestEntities(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateEntity(model.Entity{Type: "report", Title: "Annual Report 2023"})
	require.NoError(t, err)

	e, err := db.GetEntity(id)
	require.NoError(t, err)
	assert.Equal(t, "report", e.Type)
	assert.Equal(t, model.StatusPublish, e.Status)
	assert.Equal(t, "annual-report-2023", e.Slug)

	_, err = db.CreateEntity(model.Entity{Title: "untyped"})
	assert.Error(t, err)

	_, err = db.GetEntity(999)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	t.Run("update column", func(t *testing.T) {
		require.NoError(t, db.UpdateEntityColumn(id, ColumnTitle, "Renamed"))
		e, err := db.GetEntity(id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", e.Title)

		assert.Error(t, db.UpdateEntityColumn(id, "type", "post"))
		assert.ErrorIs(t, db.UpdateEntityColumn(999, ColumnTitle, "x"), ErrEntityNotFound)
	})

	t.Run("change type", func(t *testing.T) {
		require.NoError(t, db.SetEntityType(id, "post"))
		e, err := db.GetEntity(id)
		require.NoError(t, err)
		assert.Equal(t, "post", e.Type)
		assert.ErrorIs(t, db.SetEntityType(999, "post"), ErrEntityNotFound)
	})
}

func TestListEntities(t *testing.T) {
	db := openTestDB(t)
	for _, e := range []model.Entity{
		{Type: "post", Title: "A"},
		{Type: "report", Title: "B"},
		{Type: "post", Title: "C"},
	} {
		_, err := db.CreateEntity(e)
		require.NoError(t, err)
	}

	all, err := db.ListEntities()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	posts, err := db.ListEntities("post")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "C", posts[1].Title)

	both, err := db.ListEntities("post", "report")
	require.NoError(t, err)
	assert.Len(t, both, 3)

	none, err := db.ListEntities("page")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestValues(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateEntity(model.Entity{Type: "report", Title: "R"})
	require.NoError(t, err)

	rows := []any{map[string]any{"url": "https://example.com/a.pdf"}}
	require.NoError(t, db.SetFieldValue(id, "downloads", rows))

	got, err := db.GetFieldValue(id, "downloads")
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = db.GetFieldValue(id, "missing")
	assert.ErrorIs(t, err, ErrValueNotFound)
	_, err = db.GetFieldValue(999, "downloads")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	require.NoError(t, db.SetMeta(id, "legacy_id", 981))
	v, err := db.GetMeta(id, "legacy_id")
	require.NoError(t, err)
	assert.Equal(t, float64(981), v)

	// Meta and fields are separate namespaces.
	_, err = db.GetMeta(id, "downloads")
	assert.ErrorIs(t, err, ErrValueNotFound)

	require.NoError(t, db.DeleteMeta(id, "legacy_id"))
	require.NoError(t, db.DeleteMeta(id, "legacy_id"))
	_, err = db.GetMeta(id, "legacy_id")
	assert.ErrorIs(t, err, ErrValueNotFound)

	assert.ErrorIs(t, db.SetMeta(999, "k", "v"), ErrEntityNotFound)
	assert.ErrorIs(t, db.DeleteFieldValue(999, "k"), ErrEntityNotFound)
}

func TestTerms(t *testing.T) {
	db := openTestDB(t)

	news, err := db.CreateTerm("News", "category", "")
	require.NoError(t, err)
	assert.Equal(t, "news", news.Slug)

	dup, err := db.CreateTerm("NEWS", "category", "")
	assert.ErrorIs(t, err, ErrTermExists)
	require.NotNil(t, dup)
	assert.Equal(t, news.ID, dup.ID)

	// Same slug in another taxonomy is a different term.
	other, err := db.CreateTerm("News", "report_type", "")
	require.NoError(t, err)
	assert.NotEqual(t, news.ID, other.ID)

	found, err := db.FindTermBySlug("news", "report_type")
	require.NoError(t, err)
	assert.Equal(t, other.ID, found.ID)

	found, err = db.FindTermByName("News", "category")
	require.NoError(t, err)
	assert.Equal(t, news.ID, found.ID)

	_, err = db.FindTermBySlug("nope", "category")
	assert.ErrorIs(t, err, ErrTermNotFound)

	_, err = db.CreateTerm("  ", "category", "")
	assert.Error(t, err)

	_, err = db.CreateTerm("Analysis", "category", "")
	require.NoError(t, err)
	list, err := db.ListTerms("category")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Analysis", list[0].Name)
}

func TestSetEntityTerms(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateEntity(model.Entity{Type: "post", Title: "P"})
	require.NoError(t, err)

	a, err := db.CreateTerm("A", "category", "")
	require.NoError(t, err)
	b, err := db.CreateTerm("B", "category", "")
	require.NoError(t, err)
	tag, err := db.CreateTerm("T", "post_tag", "")
	require.NoError(t, err)

	require.NoError(t, db.SetEntityTerms(id, "post_tag", []int64{tag.ID}, false))
	require.NoError(t, db.SetEntityTerms(id, "category", []int64{a.ID}, false))

	ids, err := db.EntityTermIDs(id, "category")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids)

	// Replace keeps other taxonomies untouched.
	require.NoError(t, db.SetEntityTerms(id, "category", []int64{b.ID}, false))
	ids, err = db.EntityTermIDs(id, "category")
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, ids)
	tags, err := db.EntityTermIDs(id, "post_tag")
	require.NoError(t, err)
	assert.Equal(t, []int64{tag.ID}, tags)

	require.NoError(t, db.SetEntityTerms(id, "category", []int64{a.ID, b.ID}, true))
	ids, err = db.EntityTermIDs(id, "category")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids)

	// A term from another taxonomy is rejected and nothing changes.
	assert.Error(t, db.SetEntityTerms(id, "category", []int64{tag.ID}, false))
	ids, err = db.EntityTermIDs(id, "category")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids)

	assert.ErrorIs(t, db.SetEntityTerms(id, "category", []int64{999}, false), ErrTermNotFound)
	assert.ErrorIs(t, db.SetEntityTerms(999, "category", nil, false), ErrEntityNotFound)
}
