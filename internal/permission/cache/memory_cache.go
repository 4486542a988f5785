package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	permissionDomain "github.com/docg1701/iam-dashboard/internal/permission/domain"
)

// memoryEntry holds a cached grant set with its expiry deadline.
type memoryEntry struct {
	grants    []*permissionDomain.PermissionGrant
	expiresAt time.Time
}

// MemoryCache is an in-process Cache backed by a mutex-protected map.
// Suitable for single-instance deployments; multi-instance deployments should
// use the redis backend so invalidations reach every replica.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached grant set for a user, treating expired entries as misses.
func (m *MemoryCache) Get(ctx context.Context, userID uuid.UUID) ([]*permissionDomain.PermissionGrant, bool, error) {
	key := cacheKey(userID)

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		// Lazy eviction: drop the stale entry on next read.
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return entry.grants, true, nil
}

// Set stores the grant set for a user with the given TTL.
func (m *MemoryCache) Set(ctx context.Context, userID uuid.UUID, grants []*permissionDomain.PermissionGrant, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[cacheKey(userID)] = memoryEntry{
		grants:    grants,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate removes the cached grant set for a user.
func (m *MemoryCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, cacheKey(userID))
	return nil
}
