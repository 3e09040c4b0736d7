package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/venuehq/payouts/pkg/domain/payout"
)

// RedisSettingsCache stores the settings snapshot in Redis so every node
// sees an invalidation immediately.
type RedisSettingsCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSettingsCache creates a Redis-backed settings cache.
func NewRedisSettingsCache(url, key string, ttl time.Duration) (*RedisSettingsCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis settings cache: invalid url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis settings cache: connection failed: %w", err)
	}
	if key == "" {
		key = "payouts:settings"
	}
	return &RedisSettingsCache{client: client, key: key, ttl: ttl}, nil
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *RedisSettingsCache) Get(ctx context.Context) (*payout.Settings, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var s payout.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Set stores a snapshot with the configured TTL.
func (c *RedisSettingsCache) Set(ctx context.Context, s *payout.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

// Invalidate drops the snapshot.
func (c *RedisSettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
