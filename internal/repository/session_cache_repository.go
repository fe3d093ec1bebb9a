package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neurevia/portal-gateway/internal/domain"
)

// ErrCacheMiss is returned when no hydrated user exists for a key.
var ErrCacheMiss = errors.New("session cache miss")

// SessionCacheRepository keeps a short-lived copy of the logged-in user for fast
// UI hydration. It is never consulted for access decisions.
type SessionCacheRepository interface {
	Put(ctx context.Context, key string, user *domain.UserSummary, ttl time.Duration) error
	Get(ctx context.Context, key string) (*domain.UserSummary, error)
	Delete(ctx context.Context, key string) error
}

type sessionCacheRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionCacheRepository builds repository.
func NewSessionCacheRepository(client redis.UniversalClient) SessionCacheRepository {
	return &sessionCacheRepository{client: client, prefix: "portal:hydration:"}
}

func (r *sessionCacheRepository) Put(ctx context.Context, key string, user *domain.UserSummary, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if user == nil {
		return errors.New("cannot cache empty user")
	}
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return r.client.Set(ctx, r.prefix+key, data, ttl).Err()
}

func (r *sessionCacheRepository) Get(ctx context.Context, key string) (*domain.UserSummary, error) {
	if key == "" {
		return nil, ErrCacheMiss
	}
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var user domain.UserSummary
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *sessionCacheRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return r.client.Del(ctx, r.prefix+key).Err()
}
