// Package cache signals the dashboard's keyed query cache that order data
// is stale. The notifier never reads these caches, only deletes the keys so
// any visible list refetches on its next render.
package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Query cache keys shared with the dashboard frontend.
const (
	KeyVendorOrders   = "vendor-orders"
	KeyStoreOrders    = "terango-store-orders"
	KeyStoreDashboard = "terango-store-dashboard"
)

// RedisInvalidator marks query keys stale by deleting them.
type RedisInvalidator struct {
	rdb *redis.Client
}

// NewRedisInvalidator creates an invalidator over an existing client.
func NewRedisInvalidator(rdb *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{rdb: rdb}
}

// Invalidate deletes the given keys. A missing key is already stale, so DEL
// of an absent key is success.
func (i *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := i.rdb.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	log.Debug().Strs("keys", keys).Msg("cache keys invalidated")
	return nil
}
