package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSchema() *domain.Schema {
	schema := domain.NewSchema()
	schema.Properties["id"] = domain.FieldMapping{Type: domain.DatatypeKeyword}
	schema.Properties["text"] = domain.FieldMapping{Type: domain.DatatypeText}
	schema.Properties["person"] = domain.FieldMapping{Type: domain.DatatypeKeyword}
	schema.Properties["date"] = domain.FieldMapping{Type: domain.DatatypeDate}
	schema.Properties["year"] = domain.FieldMapping{Type: domain.DatatypeKeyword}
	schema.Properties["text_suggest"] = domain.CompletionMapping()
	return schema
}

func testRecord(id string, persons ...string) *domain.IndexRecord {
	return &domain.IndexRecord{
		ID:          id,
		Text:        "Dear " + id,
		TextSuggest: domain.TextSuggest{Input: []string{"Dear", id}},
		Entities:    []domain.EntityGroup{{Type: "person", Values: persons}},
		Metadata:    map[string]any{"date": "1901-03-04", "year": 1901},
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.db"), store.Path())
	require.NoError(t, store.Close())

	// Reopening skips applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_CreateIndexAndUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateIndex(ctx, "letters", testSchema()))
	require.NoError(t, store.Upsert(ctx, "letters", testRecord("a", "Anna", "Bert")))
	require.NoError(t, store.Upsert(ctx, "letters", testRecord("b", "Bert")))

	n, err := store.Count(ctx, "letters")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	body, err := store.Record(ctx, "letters", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", body["id"])
	assert.Equal(t, []any{"Anna", "Bert"}, body["person"])
	assert.Equal(t, []any{}, body["facsimiles"])

	ids, err := store.Find(ctx, "letters", "person", "Bert")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, err = store.Find(ctx, "letters", "year", "1901")
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	// Date fields are not keyword-indexed.
	ids, err = store.Find(ctx, "letters", "date", "1901-03-04")
	require.NoError(t, err)
	assert.Empty(t, ids)

	schema, err := store.Schema(ctx, "letters")
	require.NoError(t, err)
	assert.Equal(t, domain.DatatypeCompletion, schema.Properties["text_suggest"].Type)
}

func TestStore_UpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateIndex(ctx, "letters", testSchema()))
	require.NoError(t, store.Upsert(ctx, "letters", testRecord("a", "Anna")))
	require.NoError(t, store.Upsert(ctx, "letters", testRecord("a", "Carl")))

	ids, err := store.Find(ctx, "letters", "person", "Anna")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = store.Find(ctx, "letters", "person", "Carl")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestStore_CreateIndexDropsRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateIndex(ctx, "letters", testSchema()))
	require.NoError(t, store.CreateIndex(ctx, "diaries", testSchema()))
	require.NoError(t, store.Upsert(ctx, "letters", testRecord("a", "Anna")))
	require.NoError(t, store.Upsert(ctx, "diaries", testRecord("d", "Dirk")))

	require.NoError(t, store.CreateIndex(ctx, "letters", testSchema()))

	n, err := store.Count(ctx, "letters")
	require.NoError(t, err)
	assert.Zero(t, n)
	ids, err := store.Find(ctx, "letters", "person", "Anna")
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err = store.Count(ctx, "diaries")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, "missing", testRecord("a"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Schema(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.CreateIndex(ctx, "letters", testSchema()))
	_, err = store.Record(ctx, "letters", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
