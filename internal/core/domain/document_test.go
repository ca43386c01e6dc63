package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenFacsimiles(t *testing.T) {
	facsimiles := []Facsimile{
		{ID: "f1", Versions: []FacsimileVersion{{Path: "a.jpg"}, {Path: "a_hi.jpg"}}},
		{ID: "f2", Versions: nil},
		{ID: "f3", Versions: []FacsimileVersion{{Path: "c.jpg"}}},
	}

	assert.Equal(t, []string{"a.jpg", "a_hi.jpg", "c.jpg"}, FlattenFacsimiles(facsimiles))
}

func TestFlattenFacsimiles_Empty(t *testing.T) {
	paths := FlattenFacsimiles(nil)
	assert.NotNil(t, paths)
	assert.Empty(t, paths)
}

func TestNormalizedOutput_Failed(t *testing.T) {
	out := NormalizedOutput{
		Warnings: []*StageError{NewStageError(StageMetadata, "d", nil)},
	}

	assert.True(t, out.Failed(StageMetadata))
	assert.False(t, out.Failed(StageEntities))
}

func TestIndexRecord_Keys(t *testing.T) {
	rec := IndexRecord{
		ID:   "doc",
		Text: "a b",
		Entities: []EntityGroup{
			{Type: "person", Values: []string{"x"}},
			{Type: "place", Values: []string{"y"}},
		},
		Metadata: map[string]any{"date": "1700", "author": "z", "person": "override"},
	}

	assert.Equal(t,
		[]string{"id", "text", "text_suggest", "facsimiles", "person", "place", "author", "date"},
		rec.Keys())
}

func TestIndexRecord_MarshalJSON_MetadataWins(t *testing.T) {
	rec := IndexRecord{
		ID:          "doc",
		Text:        "a b",
		TextSuggest: TextSuggest{Input: []string{"a", "b"}},
		Entities:    []EntityGroup{{Type: "person", Values: []string{"x", "y"}}},
		Metadata:    map[string]any{"person": "meta"},
	}

	data, err := json.Marshal(&rec)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"id":"doc","text":"a b","text_suggest":{"input":["a","b"]},"facsimiles":[],"person":"meta"}`,
		string(data))
}

func TestIndexRecord_MarshalJSON_Deterministic(t *testing.T) {
	rec := IndexRecord{
		ID:       "doc",
		Metadata: map[string]any{"b": 1, "a": 2, "c": 3, "d": 4, "e": 5},
	}

	first, err := json.Marshal(&rec)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(&rec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
