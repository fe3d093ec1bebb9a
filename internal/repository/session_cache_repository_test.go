package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurevia/portal-gateway/internal/domain"
	"github.com/neurevia/portal-gateway/internal/testutil"
)

func TestSessionCache_PutGetDelete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	repo := NewSessionCacheRepository(client)
	ctx := context.Background()

	user := domain.UserFromMap(map[string]any{"username": "doc", "role": "doctor", "is_approved": true})
	require.NoError(t, repo.Put(ctx, "k1", user, time.Minute))

	got, err := repo.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "doc", got.Username)
	assert.Equal(t, domain.RoleDoctor, got.Role)

	ttl, err := client.TTL(ctx, "portal:hydration:k1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Delete(ctx, "k1"))
	_, err = repo.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSessionCache_RejectsInvalidInput(t *testing.T) {
	repo := NewSessionCacheRepository(nil)
	ctx := context.Background()
	user := &domain.UserSummary{Username: "x"}

	assert.Error(t, repo.Put(ctx, "", user, time.Minute))
	assert.Error(t, repo.Put(ctx, "k", nil, time.Minute))
	assert.Error(t, repo.Put(ctx, "k", user, 0))
	_, err := repo.Get(ctx, "")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, repo.Delete(ctx, ""))
}
