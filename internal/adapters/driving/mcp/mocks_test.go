package mcp

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	ids []string
	cfg *domain.ProjectConfig
	err error
}

func (m *mockProjectService) List(_ context.Context) ([]string, error) {
	return m.ids, m.err
}

func (m *mockProjectService) Config(_ context.Context, _ string) (*domain.ProjectConfig, error) {
	return m.cfg, m.err
}

// mockSchemaService is a mock implementation of driving.SchemaService.
type mockSchemaService struct {
	schema *domain.Schema
	err    error
}

func (m *mockSchemaService) Schema(_ context.Context, _ string) (*domain.Schema, error) {
	return m.schema, m.err
}

func (m *mockSchemaService) Infer(_ context.Context, _ string, _ []string) (*domain.Schema, error) {
	return m.schema, m.err
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	out *domain.NormalizedOutput
	err error

	// raw records the body passed to ExtractRaw.
	raw []byte
}

func (m *mockExtractionService) Extract(_ context.Context, _, _ string) (*domain.NormalizedOutput, error) {
	return m.out, m.err
}

func (m *mockExtractionService) ExtractRaw(_ context.Context, _, _ string, raw []byte) (*domain.NormalizedOutput, error) {
	m.raw = raw
	return m.out, m.err
}

func (m *mockExtractionService) Fields(_ context.Context, _, _ string) (*domain.IndexRecord, error) {
	return nil, m.err
}

func (m *mockExtractionService) FieldsRaw(_ context.Context, _, _ string, _ []byte) (*domain.IndexRecord, error) {
	return nil, m.err
}
