package driving

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

// ProjectService exposes the known projects and their configuration.
type ProjectService interface {
	// List returns all project ids.
	List(ctx context.Context) ([]string, error)

	// Config returns the resolved configuration of a project.
	Config(ctx context.Context, projectID string) (*domain.ProjectConfig, error)
}
