package driven

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// IndexSink is the downstream search index.
type IndexSink interface {
	// CreateIndex drops any existing index of the project and creates a
	// fresh one conforming to schema.
	CreateIndex(ctx context.Context, projectID string, schema *domain.Schema) error

	// Upsert adds or replaces one record in the project's index.
	Upsert(ctx context.Context, projectID string, record *domain.IndexRecord) error

	// Close releases resources.
	Close() error
}
