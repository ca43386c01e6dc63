package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

type extractionFixture struct {
	rt     *fakeRuntime
	corpus *memory.Corpus
	svc    *ExtractionService
}

func newExtractionFixture(t *testing.T) *extractionFixture {
	t.Helper()
	rt := newFakeRuntime()
	rt.entities = letterEntities
	rt.metadata = func(string, string) (map[string]any, error) {
		return map[string]any{"date": "1901-03-04"}, nil
	}
	corpus := memory.NewCorpus()
	corpus.Put("letters", "sub/letter-1.xml", []byte("Dear person:Anna"))
	pool := NewSessionPool(nil, rt)
	t.Cleanup(func() { _ = pool.Shutdown() })
	resolver := NewConfigResolver(memory.NewConfigLoader(testConfig("letters")), nil)
	return &extractionFixture{
		rt:     rt,
		corpus: corpus,
		svc:    NewExtractionService(resolver, pool, NewPipeline(nil), corpus),
	}
}

func TestExtractionService_Extract(t *testing.T) {
	f := newExtractionFixture(t)

	out, err := f.svc.Extract(context.Background(), "letters", "sub/letter-1")
	require.NoError(t, err)
	assert.Equal(t, "sub/letter-1", out.ID)
	assert.Equal(t, []domain.Entity{{Type: "person", Value: "Anna"}}, out.Entities)
}

func TestExtractionService_Fields(t *testing.T) {
	f := newExtractionFixture(t)

	rec, err := f.svc.Fields(context.Background(), "letters", "sub/letter-1")
	require.NoError(t, err)
	fields := rec.Fields()
	assert.Equal(t, "sub/letter-1", fields["id"])
	assert.Equal(t, []string{"Anna"}, fields["person"])
	assert.Equal(t, "1901-03-04", fields["date"])
}

func TestExtractionService_FieldsRaw(t *testing.T) {
	f := newExtractionFixture(t)

	rec, err := f.svc.FieldsRaw(context.Background(), "letters", "posted", []byte("From person:Bert"))
	require.NoError(t, err)
	assert.Equal(t, "posted", rec.ID)
	assert.Equal(t, []string{"From", "person:Bert"}, rec.TextSuggest.Input)
}

func TestExtractionService_Errors(t *testing.T) {
	f := newExtractionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Extract(ctx, "unknown", "sub/letter-1")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = f.svc.Extract(ctx, "letters", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Extract(ctx, "letters", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.ExtractRaw(ctx, "letters", "d", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.FieldsRaw(ctx, "letters", "d", []byte("<broken"))
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestExtractionService_EntityFailureKeepsRecord(t *testing.T) {
	f := newExtractionFixture(t)
	f.rt.entities = func(string) ([]domain.Entity, error) { return nil, errors.New("TypeError") }
	f.rt.facsimiles = func(string) ([]domain.Facsimile, error) {
		return []domain.Facsimile{{ID: "f", Versions: []domain.FacsimileVersion{{Path: "1.jpg"}}}}, nil
	}

	out, err := f.svc.Extract(context.Background(), "letters", "sub/letter-1")
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "EntityExtractionError", out.Warnings[0].Stage.Kind())

	keys := Project(out).Keys()
	assert.Contains(t, keys, "facsimiles")
	assert.Contains(t, keys, "date")
	assert.NotContains(t, keys, "person")
}
