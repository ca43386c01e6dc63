package services

import (
	"context"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driving"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService lists projects and exposes their resolved configuration.
type ProjectService struct {
	resolver *ConfigResolver
	corpus   driven.Corpus
}

// NewProjectService creates a new project service.
func NewProjectService(resolver *ConfigResolver, corpus driven.Corpus) *ProjectService {
	return &ProjectService{resolver: resolver, corpus: corpus}
}

// List returns all project ids.
func (s *ProjectService) List(ctx context.Context) ([]string, error) {
	ids, err := s.corpus.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Config returns the resolved configuration of a project.
func (s *ProjectService) Config(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	return s.resolver.Resolve(ctx, projectID)
}
