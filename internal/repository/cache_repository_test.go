package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsNoop(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "zones:overview:2024-2025", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "zones:overview:2024-2025", map[string]int{"green": 1}, time.Minute))

	deleted, err := repo.DeleteByPattern(ctx, "zones:*")
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
