package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

func TestSessionPool_AcquireReusesSession(t *testing.T) {
	rt := newFakeRuntime()
	pool := NewSessionPool(nil, rt)
	ctx := context.Background()
	cfg := testConfig("letters")

	first, err := pool.Acquire(ctx, "letters", cfg)
	require.NoError(t, err)
	second, err := pool.Acquire(ctx, "letters", cfg)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), rt.inits.Load())
	assert.Equal(t, "letters", first.ProjectID)
	assert.Equal(t, domain.DefaultRuntime, first.Runtime)
	assert.Equal(t, []string{"letters"}, pool.Projects())
}

func TestSessionPool_ConcurrentFirstUseCreatesOneSession(t *testing.T) {
	rt := newFakeRuntime()
	rt.initGate = make(chan struct{})
	pool := NewSessionPool(nil, rt)
	cfg := testConfig("letters")

	const callers = 16
	var wg sync.WaitGroup
	sessions := make([]*Session, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := pool.Acquire(context.Background(), "letters", cfg)
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(rt.initGate)
	wg.Wait()

	assert.Equal(t, int32(1), rt.inits.Load())
	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
	}
}

func TestSessionPool_InitFailureNotCached(t *testing.T) {
	rt := newFakeRuntime()
	rt.initErr = errors.New("browser crashed")
	pool := NewSessionPool(nil, rt)
	ctx := context.Background()
	cfg := testConfig("letters")

	_, err := pool.Acquire(ctx, "letters", cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionInit)
	assert.Contains(t, err.Error(), "browser crashed")
	assert.Empty(t, pool.Projects())

	rt.initErr = nil
	s, err := pool.Acquire(ctx, "letters", cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, int32(2), rt.inits.Load())
}

func TestSessionPool_UnknownRuntime(t *testing.T) {
	pool := NewSessionPool(nil, newFakeRuntime())
	cfg := testConfig("letters")
	cfg.Runtime = "lua"

	_, err := pool.Acquire(context.Background(), "letters", cfg)
	assert.ErrorIs(t, err, domain.ErrSessionInit)
	assert.Contains(t, err.Error(), `"lua"`)
}

func TestSessionPool_CallerGivesUpDuringInit(t *testing.T) {
	rt := newFakeRuntime()
	rt.initGate = make(chan struct{})
	pool := NewSessionPool(nil, rt)
	cfg := testConfig("letters")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := pool.Acquire(ctx, "letters", cfg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The shared initialisation keeps going and its result is kept.
	close(rt.initGate)
	require.Eventually(t, func() bool {
		return len(pool.Projects()) == 1
	}, time.Second, 5*time.Millisecond)

	_, err = pool.Acquire(context.Background(), "letters", cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), rt.inits.Load())
}

func TestSessionPool_Shutdown(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rt := newFakeRuntime()
	pool := NewSessionPool(m, rt)
	ctx := context.Background()

	_, err := pool.Acquire(ctx, "a", testConfig("a"))
	require.NoError(t, err)
	_, err = pool.Acquire(ctx, "b", testConfig("b"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsActive))

	require.NoError(t, pool.Shutdown())

	assert.True(t, rt.closed.Load())
	for _, s := range rt.sessions {
		assert.True(t, s.closed.Load())
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))
	assert.Empty(t, pool.Projects())

	_, err = pool.Acquire(ctx, "a", testConfig("a"))
	assert.ErrorIs(t, err, domain.ErrPoolClosed)

	// Second shutdown is a no-op.
	assert.NoError(t, pool.Shutdown())
}
