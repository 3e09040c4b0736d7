// Package cache provides the settings cache implementations: in-process for
// single-node deployments and Redis for shared invalidation.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/venuehq/payouts/pkg/domain/payout"
)

// MemorySettingsCache holds the settings snapshot in process memory with a
// TTL. A zero TTL disables expiry.
type MemorySettingsCache struct {
	mu        sync.RWMutex
	settings  *payout.Settings
	expiresAt time.Time
	ttl       time.Duration
}

// NewMemorySettingsCache creates an in-process settings cache.
func NewMemorySettingsCache(ttl time.Duration) *MemorySettingsCache {
	return &MemorySettingsCache{ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *MemorySettingsCache) Get(ctx context.Context) (*payout.Settings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.settings == nil {
		return nil, nil
	}
	if c.ttl > 0 && time.Now().After(c.expiresAt) {
		return nil, nil
	}
	copied := *c.settings
	return &copied, nil
}

// Set stores a snapshot.
func (c *MemorySettingsCache) Set(ctx context.Context, s *payout.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *s
	c.settings = &copied
	c.expiresAt = time.Now().Add(c.ttl)
	return nil
}

// Invalidate drops the snapshot.
func (c *MemorySettingsCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = nil
	return nil
}
