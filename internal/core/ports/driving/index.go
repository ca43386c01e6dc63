package driving

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// IndexService (re)populates search indices from scratch.
type IndexService interface {
	// IndexProject recreates the index of one project and upserts every document.
	IndexProject(ctx context.Context, projectID string) (*domain.IndexReport, error)

	// IndexAll indexes the given projects, or every known project when none are given.
	IndexAll(ctx context.Context, projectIDs []string) ([]domain.IndexReport, error)
}
