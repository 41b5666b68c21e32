package cache

import (
	"context"
	"time"

	"github.com/pokedex-bff/pokedex/pkg/metrics"
)

// Instrumented wraps a Cache and counts hits and misses per key namespace.
type Instrumented struct {
	Cache
}

// Instrument wraps c with lookup metrics.
func Instrument(c Cache) *Instrumented {
	return &Instrumented{Cache: c}
}

// Get implements Cache.
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool) {
	data, ok := i.Cache.Get(ctx, key)
	result := "miss"
	if ok {
		result = "hit"
	}
	metrics.CacheLookupsTotal.WithLabelValues(Kind(key), result).Inc()
	return data, ok
}

// Set implements Cache.
func (i *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return i.Cache.Set(ctx, key, value, ttl)
}
