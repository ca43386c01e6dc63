package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

func sampleOutput() *domain.NormalizedOutput {
	return &domain.NormalizedOutput{
		ID:   "letter-1",
		Text: "Dear Anna",
		ExtractionResult: domain.ExtractionResult{
			Entities: []domain.Entity{
				{Type: "person", Value: "Anna"},
				{Type: "place", Value: "Delft"},
				{Type: "person", Value: "Bert"},
			},
			Metadata:   map[string]any{"date": "1901-03-04", "author": "Bert"},
			Facsimiles: []string{"img/1.jpg"},
		},
	}
}

func TestProject(t *testing.T) {
	rec := Project(sampleOutput())

	assert.Equal(t, "letter-1", rec.ID)
	assert.Equal(t, "Dear Anna", rec.Text)
	assert.Equal(t, []string{"Dear", "Anna"}, rec.TextSuggest.Input)
	assert.Equal(t, []string{"img/1.jpg"}, rec.Facsimiles)
	assert.Equal(t, []domain.EntityGroup{
		{Type: "person", Values: []string{"Anna", "Bert"}},
		{Type: "place", Values: []string{"Delft"}},
	}, rec.Entities)

	fields := rec.Fields()
	assert.Equal(t, []string{"Anna", "Bert"}, fields["person"])
	assert.Equal(t, "1901-03-04", fields["date"])
	assert.Equal(t, domain.TextSuggest{Input: []string{"Dear", "Anna"}}, fields[domain.FieldTextSuggest])
}

func TestProject_FailedEntityStageHasNoEntityKeys(t *testing.T) {
	out := sampleOutput()
	out.Entities = []domain.Entity{}
	out.Warnings = []*domain.StageError{
		domain.NewStageError(domain.StageEntities, out.ID, errors.New("boom")),
	}

	rec := Project(out)
	keys := rec.Keys()

	assert.Contains(t, keys, domain.FieldFacsimiles)
	assert.Contains(t, keys, "date")
	assert.Contains(t, keys, "author")
	assert.NotContains(t, keys, "person")
	assert.NotContains(t, keys, "place")
}

func TestProject_FailedMetadataStageHasNoMetadataKeys(t *testing.T) {
	out := sampleOutput()
	out.Warnings = []*domain.StageError{
		domain.NewStageError(domain.StageMetadata, out.ID, errors.New("boom")),
	}

	keys := Project(out).Keys()
	assert.NotContains(t, keys, "date")
	assert.Contains(t, keys, "person")
}

func TestProject_FacsimilesAlwaysPresent(t *testing.T) {
	out := &domain.NormalizedOutput{ID: "d"}

	fields := Project(out).Fields()
	assert.Equal(t, []string{}, fields[domain.FieldFacsimiles])
}

func TestProject_Deterministic(t *testing.T) {
	first, err := json.Marshal(Project(sampleOutput()))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(Project(sampleOutput()))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestProject_DoesNotAliasOutput(t *testing.T) {
	out := sampleOutput()
	rec := Project(out)

	out.Metadata["date"] = "changed"
	out.Facsimiles[0] = "changed"
	assert.Equal(t, "1901-03-04", rec.Metadata["date"])
	assert.Equal(t, "img/1.jpg", rec.Facsimiles[0])
}

func TestGroupEntities_Empty(t *testing.T) {
	assert.Empty(t, GroupEntities(nil))
}
