package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

func TestProjectService(t *testing.T) {
	corpus := memory.NewCorpus()
	ctx := context.Background()
	svc := NewProjectService(NewConfigResolver(memory.NewConfigLoader(testConfig("letters")), nil), corpus)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	corpus.AddProject("letters")
	corpus.AddProject("diaries")
	ids, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"diaries", "letters"}, ids)

	cfg, err := svc.Config(ctx, "letters")
	require.NoError(t, err)
	assert.Equal(t, "letters", cfg.ID)

	_, err = svc.Config(ctx, "diaries")
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
}
