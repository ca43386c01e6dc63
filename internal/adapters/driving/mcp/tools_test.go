package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

func TestServer_handleListProjects(t *testing.T) {
	ctx := context.Background()

	t.Run("returns project ids", func(t *testing.T) {
		ports := &Ports{
			Projects:   &mockProjectService{ids: []string{"gekaaptebrieven", "vangogh"}},
			Extraction: &mockExtractionService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListProjects(ctx, nil, ListProjectsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, []string{"gekaaptebrieven", "vangogh"}, output.Projects)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		ports := &Ports{Projects: &mockProjectService{}, Extraction: &mockExtractionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListProjects(ctx, nil, ListProjectsInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Projects)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("unavailable without project service", func(t *testing.T) {
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{}})
		require.NoError(t, err)

		_, _, err = server.handleListProjects(ctx, nil, ListProjectsInput{})

		assert.ErrorIs(t, err, errUnavailable)
	})
}

func TestServer_handleGetSchema(t *testing.T) {
	ctx := context.Background()

	schema := domain.NewSchema()
	schema.Properties["id"] = domain.FieldMapping{Type: domain.DatatypeKeyword}
	schema.Properties["date"] = domain.FieldMapping{Type: domain.DatatypeDate}
	schema.Properties["text_suggest"] = domain.CompletionMapping()

	t.Run("returns field datatypes", func(t *testing.T) {
		ports := &Ports{Schemas: &mockSchemaService{schema: schema}, Extraction: &mockExtractionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleGetSchema(ctx, nil, GetSchemaInput{Project: "vangogh"})

		require.NoError(t, err)
		assert.Equal(t, "vangogh", output.Project)
		assert.Equal(t, map[string]string{
			"id":           "keyword",
			"date":         "date",
			"text_suggest": "completion",
		}, output.Fields)
	})

	t.Run("requires project", func(t *testing.T) {
		ports := &Ports{Schemas: &mockSchemaService{schema: schema}, Extraction: &mockExtractionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGetSchema(ctx, nil, GetSchemaInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns error on inference failure", func(t *testing.T) {
		ports := &Ports{Schemas: &mockSchemaService{err: domain.ErrEmptyCorpus}, Extraction: &mockExtractionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGetSchema(ctx, nil, GetSchemaInput{Project: "empty"})

		assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
	})
}

func TestServer_handleExtractDocument(t *testing.T) {
	ctx := context.Background()

	out := &domain.NormalizedOutput{
		ID:   "letter-1",
		Text: "Dear Theo",
		ExtractionResult: domain.ExtractionResult{
			Entities:   []domain.Entity{{Type: "person", Value: "Theo"}},
			Metadata:   map[string]any{"date": "1882-07-06"},
			Facsimiles: []string{"p1.jpg"},
		},
		Warnings: []*domain.StageError{
			domain.NewStageError(domain.StageFacsimiles, "letter-1", errors.New("no pb")),
		},
	}

	t.Run("returns output and fields", func(t *testing.T) {
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{out: out}})
		require.NoError(t, err)

		_, output, err := server.handleExtractDocument(ctx, nil, ExtractDocumentInput{
			Project:  "vangogh",
			Document: "letter-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "letter-1", output.ID)
		assert.Equal(t, "Dear Theo", output.Text)
		assert.Equal(t, []EntityOutput{{Type: "person", Value: "Theo"}}, output.Entities)
		assert.Equal(t, "1882-07-06", output.Fields["date"])
		assert.Equal(t, []string{"Theo"}, output.Fields["person"])
		require.Len(t, output.Warnings, 1)
		assert.Equal(t, "FacsimileExtractionError", output.Warnings[0].Kind)
		assert.Equal(t, "no pb", output.Warnings[0].Message)
	})

	t.Run("transforms inline xml", func(t *testing.T) {
		ext := &mockExtractionService{out: out}
		server, err := NewServer(&Ports{Extraction: ext})
		require.NoError(t, err)

		_, _, err = server.handleExtractDocument(ctx, nil, ExtractDocumentInput{
			Project:  "vangogh",
			Document: "letter-1",
			XML:      "<TEI/>",
		})

		require.NoError(t, err)
		assert.Equal(t, []byte("<TEI/>"), ext.raw)
	})

	t.Run("requires project and document", func(t *testing.T) {
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{out: out}})
		require.NoError(t, err)

		_, _, err = server.handleExtractDocument(ctx, nil, ExtractDocumentInput{Project: "vangogh"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns fatal stage error", func(t *testing.T) {
		ext := &mockExtractionService{err: domain.NewStageError(domain.StageParse, "letter-1", errors.New("EOF"))}
		server, err := NewServer(&Ports{Extraction: ext})
		require.NoError(t, err)

		_, _, err = server.handleExtractDocument(ctx, nil, ExtractDocumentInput{Project: "vangogh", Document: "letter-1"})

		assert.ErrorIs(t, err, domain.ErrParse)
	})
}
