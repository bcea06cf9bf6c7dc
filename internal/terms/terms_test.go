package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldshift/fieldshift/internal/model"
	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/store"
)

type taxonomies []string

func (t taxonomies) HasTaxonomy(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

var registry = taxonomies{"category", "topic", "empty"}

type fixture struct {
	db     *store.DB
	entity int64
	a, b   *model.Term
	topicX *model.Term
}

// newFixture attaches category terms A(slug x) and B(slug y) to an entity;
// topic only contains slug x.
func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entity, err := db.CreateEntity(model.Entity{Type: "post", Title: "Report"})
	require.NoError(t, err)

	a, err := db.CreateTerm("Alpha", "category", "x")
	require.NoError(t, err)
	b, err := db.CreateTerm("Beta", "category", "y")
	require.NoError(t, err)
	topicX, err := db.CreateTerm("Alpha Topic", "topic", "x")
	require.NoError(t, err)

	require.NoError(t, db.SetEntityTerms(entity, "category", []int64{a.ID, b.ID}, false))
	return fixture{db: db, entity: entity, a: a, b: b, topicX: topicX}
}

func TestMapperMatchesBySlug(t *testing.T) {
	f := newFixture(t)

	m, err := New(registry, f.db, "category", "topic", f.entity)
	require.NoError(t, err)

	mapped, err := m.MappedTermIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{f.topicX.ID}, mapped)

	unmapped, err := m.UnmappedTermIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{f.b.ID}, unmapped)

	mappings, err := m.Mappings()
	require.NoError(t, err)
	assert.Equal(t, []Mapping{
		{SourceTermID: f.a.ID, TermID: f.topicX.ID, Slug: "x", Matched: true},
		{SourceTermID: f.b.ID, TermID: f.b.ID, Slug: "y"},
	}, mappings)

	// Matching never creates terms.
	topics, err := f.db.ListTerms("topic")
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}

type countingReader struct {
	calls int
}

func (c *countingReader) GetTerm(int64) (*model.Term, error) {
	c.calls++
	return nil, store.ErrTermNotFound
}

func (c *countingReader) FindTermBySlug(string, string) (*model.Term, error) {
	c.calls++
	return nil, store.ErrTermNotFound
}

func (c *countingReader) EntityTermIDs(int64, string) ([]int64, error) {
	c.calls++
	return nil, nil
}

func TestNewPreconditions(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		entity   int64
	}{
		{"empty from", "", "topic", 1},
		{"empty to", "category", " ", 1},
		{"zero entity", "category", "topic", 0},
		{"unknown from", "genre", "topic", 1},
		{"unknown to", "category", "genre", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &countingReader{}
			m, err := New(registry, reader, tt.from, tt.to, tt.entity)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrPrecondition)
			assert.Zero(t, reader.calls)
		})
	}
}

func TestMigrateCreatesAndReplaces(t *testing.T) {
	f := newFixture(t)

	// Pre-existing destination term that replace semantics drops.
	stale, err := f.db.CreateTerm("Stale", "topic", "stale")
	require.NoError(t, err)
	dest, err := f.db.CreateEntity(model.Entity{Type: "report", Title: "Copy"})
	require.NoError(t, err)
	require.NoError(t, f.db.SetEntityTerms(dest, "topic", []int64{stale.ID}, false))

	m, err := New(registry, f.db, "category", "topic", f.entity)
	require.NoError(t, err)
	out, err := Migrate(f.db, m, Options{DestEntityID: dest})
	require.NoError(t, err)

	require.Len(t, out.Created, 1)
	created, err := f.db.GetTerm(out.Created[0])
	require.NoError(t, err)
	assert.Equal(t, "y", created.Slug)
	assert.Equal(t, "Beta", created.Name)
	assert.Equal(t, "topic", created.Taxonomy)

	got, err := f.db.EntityTermIDs(dest, "topic")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{f.topicX.ID, created.ID}, got)

	_, _, errs := notice.Counts(out.Notices)
	assert.Zero(t, errs)
}

func TestMigrateAppend(t *testing.T) {
	f := newFixture(t)
	stale, err := f.db.CreateTerm("Stale", "topic", "stale")
	require.NoError(t, err)
	require.NoError(t, f.db.SetEntityTerms(f.entity, "topic", []int64{stale.ID}, false))

	m, err := New(registry, f.db, "category", "topic", f.entity)
	require.NoError(t, err)
	out, err := Migrate(f.db, m, Options{Append: true})
	require.NoError(t, err)

	got, err := f.db.EntityTermIDs(f.entity, "topic")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Contains(t, got, stale.ID)
	assert.Equal(t, f.entity, out.EntityID)
}

func TestMigrateReusesTermByName(t *testing.T) {
	f := newFixture(t)
	beta, err := f.db.CreateTerm("Beta", "topic", "beta-topic")
	require.NoError(t, err)

	m, err := New(registry, f.db, "category", "topic", f.entity)
	require.NoError(t, err)
	out, err := Migrate(f.db, m, Options{})
	require.NoError(t, err)

	assert.Equal(t, []int64{beta.ID}, out.Created)
	topics, err := f.db.ListTerms("topic")
	require.NoError(t, err)
	assert.Len(t, topics, 2)
}

func TestMigrateDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)

	m, err := New(registry, f.db, "category", "topic", f.entity)
	require.NoError(t, err)
	out, err := Migrate(f.db, m, Options{DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, out.Created)
	assert.Equal(t, []int64{f.topicX.ID}, out.Assigned)
	assert.Equal(t, []string{"Beta"}, out.WouldCreate)
	assert.Equal(t, 2, out.AssignCount())

	topics, err := f.db.ListTerms("topic")
	require.NoError(t, err)
	assert.Len(t, topics, 1)
	got, err := f.db.EntityTermIDs(f.entity, "topic")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMigrateDryRunMatchesRealRun(t *testing.T) {
	f := newFixture(t)

	m, err := New(registry, f.db, "category", "topic", f.entity)
	require.NoError(t, err)
	dry, err := Migrate(f.db, m, Options{DryRun: true})
	require.NoError(t, err)
	applied, err := Migrate(f.db, m, Options{})
	require.NoError(t, err)

	assert.Equal(t, applied.AssignCount(), dry.AssignCount())
	assert.Len(t, applied.Assigned, 2)
	assert.Equal(t, len(applied.Created), len(dry.WouldCreate))
}

func TestMigrateDryRunAllUnmapped(t *testing.T) {
	f := newFixture(t)
	other, err := f.db.CreateEntity(model.Entity{Type: "post", Title: "Other"})
	require.NoError(t, err)
	require.NoError(t, f.db.SetEntityTerms(other, "category", []int64{f.b.ID}, false))

	m, err := New(registry, f.db, "category", "topic", other)
	require.NoError(t, err)
	out, err := Migrate(f.db, m, Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, out.AssignCount())
	for _, n := range out.Notices {
		assert.NotEqual(t, notice.CodeNothingToAssign, n.Code, n.Message)
		assert.NotEqual(t, notice.StatusWarning, n.Status, n.Message)
	}
}

func TestMigrateNothingToAssign(t *testing.T) {
	f := newFixture(t)

	m, err := New(registry, f.db, "empty", "topic", f.entity)
	require.NoError(t, err)
	out, err := Migrate(f.db, m, Options{})
	require.NoError(t, err)

	assert.Empty(t, out.Assigned)
	require.NotEmpty(t, out.Notices)
	last := out.Notices[len(out.Notices)-1]
	assert.Equal(t, notice.StatusWarning, last.Status)
	assert.Equal(t, notice.CodeNothingToAssign, last.Code)
}
