// Package cache defines the key/value cache used to avoid redundant
// upstream calls, and the deterministic key scheme shared by its callers.
//
// Every caller must stay correct when the cache always misses: the cache is
// a side channel, never a source of truth.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

// Cache is a key/value store with per-entry TTL. A Get after the entry's
// TTL elapsed reports a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store is a Cache backend that can also be inspected and cleared.
type Store interface {
	Cache
	// Stats returns entry count and hit/miss counters.
	Stats(ctx context.Context) (models.CacheStats, error)
	// Clear removes entries. If expiredOnly is true, only expired entries are removed.
	Clear(ctx context.Context, expiredOnly bool) error
	// Close releases resources.
	Close() error
}

// GetJSON looks up key and decodes it into v. A value that no longer
// decodes is reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// Nop is a cache that never stores anything. It is used when caching is
// disabled and in tests that need cold-start behavior.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Stats(context.Context) (models.CacheStats, error) { return models.CacheStats{}, nil }
func (Nop) Clear(context.Context, bool) error { return nil }
func (Nop) Close() error { return nil }
