package driving

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// SchemaService infers index schemas.
type SchemaService interface {
	// Schema infers the schema of a project from its whole corpus.
	Schema(ctx context.Context, projectID string) (*domain.Schema, error)

	// Infer infers a schema from the given ordered document paths.
	Infer(ctx context.Context, projectID string, paths []string) (*domain.Schema, error)
}
