// Package cache provides the permission grant cache backends.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// Cache stores a user's full grant set keyed by user ID. Entries are created
// lazily on validation misses and invalidated synchronously on grant
// mutations; the TTL only bounds staleness for entries missed by an
// invalidation (e.g. a crashed writer).
type Cache interface {
	// Get returns the cached grant set for a user. The second return is false
	// on a miss. An error means the backend itself failed.
	Get(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, bool, error)

	// Set stores the grant set for a user with the given TTL.
	Set(ctx context.Context, userID uuid.UUID, grants []*permissionDomain.PermissionGrant, ttl time.Duration) error

	// Invalidate removes the cached grant set for a user.
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// cacheKey builds the backend key for a user's grant set.
func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("perm:%s", userID)
}
