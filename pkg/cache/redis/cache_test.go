package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to the Redis named by POKEDEX_TEST_REDIS_URL and
// isolates the test under a random prefix.
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	url := os.Getenv("POKEDEX_TEST_REDIS_URL")
	if url == "" {
		t.Skip("POKEDEX_TEST_REDIS_URL not set")
	}
	client, err := Connect(context.Background(), url)
	require.NoError(t, err)

	c := New(client, "pokedex-test:"+uuid.NewString()+":")
	t.Cleanup(func() {
		_ = c.Clear(context.Background(), false)
		_ = c.Close()
	})
	return c
}

func TestSetGetAndExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "type:name=fire", []byte("[]"), time.Hour))
	require.NoError(t, c.Set(ctx, "short", []byte("x"), 50*time.Millisecond))

	v, ok := c.Get(ctx, "type:name=fire")
	require.True(t, ok)
	assert.Equal(t, "[]", string(v))

	time.Sleep(150 * time.Millisecond)
	_, ok = c.Get(ctx, "short")
	assert.False(t, ok)
}

func TestStatsAndClear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Entries)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)

	require.NoError(t, c.Clear(ctx, false))
	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Entries)
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "redis://localhost:6379/not-a-db")
	assert.Error(t, err)
}
