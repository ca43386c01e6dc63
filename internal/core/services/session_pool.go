package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/logger"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

// Session is a live transform session bound to one project.
// Only one evaluation runs in a session at a time.
type Session struct {
	ProjectID string
	Runtime   string
	Config    *domain.ProjectConfig

	impl   driven.TransformSession
	sem    chan struct{}
	closed atomic.Bool
}

func newSession(cfg *domain.ProjectConfig, runtime string, impl driven.TransformSession) *Session {
	return &Session{
		ProjectID: cfg.ID,
		Runtime:   runtime,
		Config:    cfg,
		impl:      impl,
		sem:       make(chan struct{}, 1),
	}
}

// lock takes exclusive use of the session. Waiting honours ctx.
// A session closed while the caller waited fails with domain.ErrPoolClosed.
func (s *Session) lock(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.closed.Load() {
		s.unlock()
		return domain.ErrPoolClosed
	}
	return nil
}

func (s *Session) unlock() {
	<-s.sem
}

// close waits for the running evaluation, if any, then closes the session.
func (s *Session) close() error {
	s.sem <- struct{}{}
	defer s.unlock()
	s.closed.Store(true)
	return s.impl.Close()
}

// SessionPool owns one transform session per project.
//
// Lifecycle: NewSessionPool registers the runtimes, Acquire creates a
// project's session on first use and returns it afterwards, Shutdown
// closes every session and runtime at process teardown.
type SessionPool struct {
	runtimes map[string]driven.TransformRuntime
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
	group    singleflight.Group
}

// NewSessionPool creates a pool dispatching to the given runtimes by name.
func NewSessionPool(m *metrics.Metrics, runtimes ...driven.TransformRuntime) *SessionPool {
	p := &SessionPool{
		runtimes: make(map[string]driven.TransformRuntime, len(runtimes)),
		metrics:  m,
		sessions: make(map[string]*Session),
	}
	for _, rt := range runtimes {
		p.runtimes[rt.Name()] = rt
	}
	return p
}

// Acquire returns the session of a project, creating it on first use.
// Concurrent first-use calls share a single initialisation. A failed
// initialisation is not cached: the next call retries.
func (p *SessionPool) Acquire(ctx context.Context, projectID string, cfg *domain.ProjectConfig) (*Session, error) {
	if s, err := p.lookup(projectID); s != nil || err != nil {
		return s, err
	}

	ch := p.group.DoChan(projectID, func() (any, error) {
		if s, err := p.lookup(projectID); s != nil || err != nil {
			return s, err
		}
		// Initialisation is shared by every waiter, so one caller giving up
		// must not abort it.
		return p.create(context.WithoutCancel(ctx), projectID, cfg)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) lookup(projectID string) (*Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, domain.ErrPoolClosed
	}
	return p.sessions[projectID], nil
}

func (p *SessionPool) create(ctx context.Context, projectID string, cfg *domain.ProjectConfig) (*Session, error) {
	name := cfg.RuntimeName()
	rt, ok := p.runtimes[name]
	if !ok {
		err := fmt.Errorf("%w: project %s: unknown runtime %q", domain.ErrSessionInit, projectID, name)
		p.metrics.SessionInit(name, err)
		return nil, err
	}

	logger.Debug("Starting %s session for project %s", name, projectID)
	impl, err := rt.NewSession(ctx, cfg)
	p.metrics.SessionInit(name, err)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: project %s: %w", domain.ErrSessionInit, projectID, err)
	}

	s := newSession(cfg, name, impl)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = impl.Close()
		p.metrics.SessionsClosed(1)
		return nil, domain.ErrPoolClosed
	}
	p.sessions[projectID] = s
	p.mu.Unlock()

	logger.Info("Session ready for project %s (%s runtime)", projectID, name)
	return s, nil
}

// Projects returns the ids of projects with a live session, sorted.
func (p *SessionPool) Projects() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.sessions))
	for id := range p.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown closes every session, then every runtime. It is part of process
// teardown only; Acquire fails with domain.ErrPoolClosed afterwards.
func (p *SessionPool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	sessions := p.sessions
	p.sessions = make(map[string]*Session)
	p.mu.Unlock()

	var errs []error
	for id, s := range sessions {
		if err := s.close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %s: %w", id, err))
		}
	}
	p.metrics.SessionsClosed(len(sessions))

	for name, rt := range p.runtimes {
		if err := rt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close runtime %s: %w", name, err))
		}
	}

	logger.Debug("Session pool shut down (%d sessions)", len(sessions))
	return errors.Join(errs...)
}
