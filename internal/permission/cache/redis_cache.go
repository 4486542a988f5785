package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/docg1701/iam-dashboard/internal/errors"
	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// RedisCache is a Cache backed by a redis server. Grant sets are stored as
// JSON so invalidations are visible to every application replica.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Cache on top of the given redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached grant set for a user. redis.Nil is a miss, any other
// error is a backend failure.
func (r *RedisCache) Get(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, bool, error) {
	payload, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperrors.Wrap(err, "failed to read grant cache")
	}

	var grants []*permissionDomain.PermissionGrant
	if err := json.Unmarshal(payload, &grants); err != nil {
		// A corrupt payload is unusable; treat it as a miss so the caller
		// reloads from the store and overwrites it.
		return nil, false, nil
	}

	return grants, true, nil
}

// Set stores the grant set for a user with the given TTL.
func (r *RedisCache) Set(ctx context.Context, userID uuid.UUID, grants []*permissionDomain.PermissionGrant, ttl time.Duration) error {
	payload, err := json.Marshal(grants)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal grant set")
	}

	if err := r.client.Set(ctx, cacheKey(userID), payload, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to write grant cache")
	}
	return nil
}

// Invalidate removes the cached grant set for a user.
func (r *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "failed to invalidate grant cache")
	}
	return nil
}
