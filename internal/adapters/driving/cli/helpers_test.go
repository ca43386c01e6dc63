package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// mockProjectService implements driving.ProjectService for testing.
type mockProjectService struct {
	ids []string
	err error
}

func (m *mockProjectService) List(_ context.Context) ([]string, error) {
	return m.ids, m.err
}

func (m *mockProjectService) Config(_ context.Context, id string) (*domain.ProjectConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ProjectConfig{ID: id}, nil
}

// mockSchemaService implements driving.SchemaService for testing.
type mockSchemaService struct {
	inferred []string
}

func (m *mockSchemaService) Schema(_ context.Context, _ string) (*domain.Schema, error) {
	s := domain.NewSchema()
	s.Properties["id"] = domain.FieldMapping{Type: domain.DatatypeKeyword}
	return s, nil
}

func (m *mockSchemaService) Infer(ctx context.Context, id string, paths []string) (*domain.Schema, error) {
	m.inferred = paths
	return m.Schema(ctx, id)
}

// mockExtractionService implements driving.ExtractionService for testing.
type mockExtractionService struct {
	raw []byte
}

func (m *mockExtractionService) Extract(_ context.Context, _, docID string) (*domain.NormalizedOutput, error) {
	return &domain.NormalizedOutput{ID: docID, Text: "stored"}, nil
}

func (m *mockExtractionService) ExtractRaw(_ context.Context, _, docID string, raw []byte) (*domain.NormalizedOutput, error) {
	m.raw = raw
	return &domain.NormalizedOutput{ID: docID, Text: "raw"}, nil
}

func (m *mockExtractionService) Fields(_ context.Context, _, docID string) (*domain.IndexRecord, error) {
	return &domain.IndexRecord{ID: docID, Text: "stored"}, nil
}

func (m *mockExtractionService) FieldsRaw(_ context.Context, _, docID string, raw []byte) (*domain.IndexRecord, error) {
	m.raw = raw
	return &domain.IndexRecord{ID: docID, Text: "raw"}, nil
}

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	projects []string
	err      error
}

func (m *mockIndexService) IndexProject(_ context.Context, id string) (*domain.IndexReport, error) {
	return &domain.IndexReport{ProjectID: id}, m.err
}

func (m *mockIndexService) IndexAll(_ context.Context, ids []string) ([]domain.IndexReport, error) {
	m.projects = ids
	return []domain.IndexReport{{RunID: "run-1", ProjectID: "vangogh", Total: 3, Indexed: 2, Failed: 1}}, m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	projects   *mockProjectService
	schemas    *mockSchemaService
	extraction *mockExtractionService
	index      *mockIndexService
}

// setupTestServices installs mock services and restores the previous ones
// when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	oldSettings, oldProjects, oldSchemas := settingsStore, projectService, schemaService
	oldExtraction, oldIndex := extractionService, indexService

	ts := &testServices{
		projects:   &mockProjectService{ids: []string{"gekaaptebrieven", "vangogh"}},
		schemas:    &mockSchemaService{},
		extraction: &mockExtractionService{},
		index:      &mockIndexService{},
	}
	projectService = ts.projects
	schemaService = ts.schemas
	extractionService = ts.extraction
	indexService = ts.index

	t.Cleanup(func() {
		settingsStore, projectService, schemaService = oldSettings, oldProjects, oldSchemas
		extractionService, indexService = oldExtraction, oldIndex
	})
	return ts
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag values persist between executions of the same command tree.
	projectsJSON, indexJSON, extractFields = false, false, false
	extractFile, serveAddr = "", ""
	schemaDocs = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
