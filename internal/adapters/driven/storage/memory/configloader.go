package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure ConfigLoader implements the interface.
var _ driven.ProjectConfigLoader = (*ConfigLoader)(nil)

// ConfigLoader is an in-memory implementation of driven.ProjectConfigLoader.
// It counts loads per project and can be told to fail.
type ConfigLoader struct {
	mu      sync.Mutex
	configs map[string]*domain.ProjectConfig
	errs    map[string]error
	loads   map[string]int
}

// NewConfigLoader creates a loader serving the given configs by id.
func NewConfigLoader(configs ...*domain.ProjectConfig) *ConfigLoader {
	l := &ConfigLoader{
		configs: make(map[string]*domain.ProjectConfig),
		errs:    make(map[string]error),
		loads:   make(map[string]int),
	}
	for _, cfg := range configs {
		l.configs[cfg.ID] = cfg
	}
	return l
}

// Set stores or replaces a project config.
func (l *ConfigLoader) Set(cfg *domain.ProjectConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.configs[cfg.ID] = cfg
}

// Fail makes subsequent loads of a project return err. A nil err clears it.
func (l *ConfigLoader) Fail(projectID string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.errs, projectID)
		return
	}
	l.errs[projectID] = err
}

// Loads returns how many times a project was loaded.
func (l *ConfigLoader) Loads(projectID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[projectID]
}

// Load returns a copy of the stored config.
func (l *ConfigLoader) Load(_ context.Context, projectID string) (*domain.ProjectConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads[projectID]++
	if err, ok := l.errs[projectID]; ok {
		return nil, err
	}
	cfg, ok := l.configs[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, projectID)
	}
	clone := *cfg
	return &clone, nil
}
