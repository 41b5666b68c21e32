// Package memory is an in-process Cache with per-entry TTL and lazy expiry.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pokedex-bff/pokedex/pkg/models"
)

// DefaultSweepInterval is how often Sweep reclaims expired entries.
const DefaultSweepInterval = time.Minute

// Cache is a map-backed cache. Entries are immutable once written; a Set
// on an existing key replaces the whole entry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	now     func() time.Time
	hits    atomic.Int64
	misses  atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]models.CacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key, or a miss if absent or expired. An expired
// entry is removed on the way out.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !entry.Expired(c.now()) {
		c.hits.Add(1)
		return entry.Value, true
	}

	c.misses.Add(1)
	if ok {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the key.
		if e, still := c.entries[key]; still && e.Expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	return nil, false
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = models.CacheEntry{Key: key, Value: stored, ExpiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Stats returns cache performance metrics. Entries counts live entries only.
func (c *Cache) Stats(context.Context) (models.CacheStats, error) {
	now := c.now()
	var n int
	c.mu.RLock()
	for _, e := range c.entries {
		if !e.Expired(now) {
			n++
		}
	}
	c.mu.RUnlock()
	return models.CacheStats{
		Entries: int64(n),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}, nil
}

// Clear removes entries. If expiredOnly is true, only expired entries are removed.
func (c *Cache) Clear(_ context.Context, expiredOnly bool) error {
	if expiredOnly {
		c.sweep()
		return nil
	}
	c.mu.Lock()
	c.entries = make(map[string]models.CacheEntry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes expired entries every interval until ctx is done. Keys
// written once and never read again are only reclaimed this way.
func (c *Cache) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.Expired(now) {
			delete(c.entries, k)
		}
	}
}

// Close is a no-op.
func (c *Cache) Close() error { return nil }
