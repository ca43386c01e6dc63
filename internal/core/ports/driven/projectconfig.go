package driven

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// ProjectConfigLoader reads a project's configuration from storage.
// Implementations apply the default configuration merge and validate the result.
type ProjectConfigLoader interface {
	// Load returns the merged configuration.
	// Returns domain.ErrConfigNotFound when the project has no configuration.
	Load(ctx context.Context, projectID string) (*domain.ProjectConfig, error)
}
