package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest int
	err := repo.Get(ctx, "points:total:1:0", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "points:total:1:0", 25, time.Minute))
	require.NoError(t, repo.Delete(ctx, "points:total:1:0"))

	n, err := repo.Incr(ctx, "points:gen:1")
	require.NoError(t, err)
	assert.Zero(t, n)

	exists, err := repo.Exists(ctx, "auth:revoked:abc")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, repo.Close())
}
