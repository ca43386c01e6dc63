package services

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/logger"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

// ConfigResolver loads and caches project configuration for the process lifetime.
// Concurrent first-use loads of the same project share one load. Failed
// loads are not cached. There is no invalidation: a new process is required
// to pick up configuration changes.
type ConfigResolver struct {
	loader  driven.ProjectConfigLoader
	metrics *metrics.Metrics

	mu      sync.RWMutex
	configs map[string]*domain.ProjectConfig
	group   singleflight.Group
}

// NewConfigResolver creates a resolver backed by loader.
func NewConfigResolver(loader driven.ProjectConfigLoader, m *metrics.Metrics) *ConfigResolver {
	return &ConfigResolver{
		loader:  loader,
		metrics: m,
		configs: make(map[string]*domain.ProjectConfig),
	}
}

// Resolve returns the configuration of a project.
// Returns domain.ErrConfigNotFound when the project has no configuration.
func (r *ConfigResolver) Resolve(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	if cfg, ok := r.cached(projectID); ok {
		return cfg, nil
	}

	ch := r.group.DoChan(projectID, func() (any, error) {
		if cfg, ok := r.cached(projectID); ok {
			return cfg, nil
		}

		// The load is shared by every waiter; one caller leaving must not fail it.
		cfg, err := r.loader.Load(context.WithoutCancel(ctx), projectID)
		r.metrics.ConfigLoad(err)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.configs[projectID] = cfg
		r.mu.Unlock()

		logger.Debug("Loaded config for project %s", projectID)
		return cfg, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ProjectConfig), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *ConfigResolver) cached(projectID string) (*domain.ProjectConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[projectID]
	return cfg, ok
}
