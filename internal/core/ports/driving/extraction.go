package driving

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// ExtractionService transforms single documents.
type ExtractionService interface {
	// Extract transforms a stored document of a project.
	Extract(ctx context.Context, projectID, documentID string) (*domain.NormalizedOutput, error)

	// ExtractRaw transforms the given XML bytes as a document of a project.
	ExtractRaw(ctx context.Context, projectID, documentID string, raw []byte) (*domain.NormalizedOutput, error)

	// Fields transforms a stored document and projects it into an index record.
	Fields(ctx context.Context, projectID, documentID string) (*domain.IndexRecord, error)

	// FieldsRaw transforms the given XML bytes and projects them into an index record.
	FieldsRaw(ctx context.Context, projectID, documentID string, raw []byte) (*domain.IndexRecord, error)
}
