package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(WithClock(clock.Now)), clock
}

func TestSetAndGet(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "detail:url=a", []byte(`{"height":7}`), time.Hour))

	v, ok := c.Get(ctx, "detail:url=a")
	require.True(t, ok)
	assert.Equal(t, `{"height":7}`, string(v))

	_, ok = c.Get(ctx, "detail:url=b")
	assert.False(t, ok)
}

func TestTTLExpiration(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "list", []byte("page"), time.Hour))

	clock.Advance(59 * time.Minute)
	_, ok := c.Get(ctx, "list")
	assert.True(t, ok, "entry should still be live before its TTL")

	clock.Advance(time.Minute)
	_, ok = c.Get(ctx, "list")
	assert.False(t, ok, "entry must miss once its TTL elapsed")
}

func TestZeroTTLNeverHits(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestOverwriteReplacesEntry(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("old"), time.Minute))
	clock.Advance(30 * time.Second)
	require.NoError(t, c.Set(ctx, "k", []byte("new"), time.Hour))
	clock.Advance(time.Minute)

	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "new", string(v))
}

func TestStoredValueIsCopied(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Hour))
	buf[0] = 'z'

	v, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))
}

func TestStatsAndClear(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("1"), time.Minute)
	_ = c.Set(ctx, "long", []byte("2"), time.Hour)
	c.Get(ctx, "short")  // hit
	c.Get(ctx, "absent") // miss

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Entries)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)

	clock.Advance(2 * time.Minute)
	require.NoError(t, c.Clear(ctx, true))
	stats, _ = c.Stats(ctx)
	assert.EqualValues(t, 1, stats.Entries)

	require.NoError(t, c.Clear(ctx, false))
	stats, _ = c.Stats(ctx)
	assert.EqualValues(t, 0, stats.Entries)
}

func TestExpiredEntriesAreReclaimedOnRead(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("list:search=term%d", i), []byte("x"), time.Hour))
	}
	require.Equal(t, 1000, c.Len())

	clock.Advance(48 * time.Hour)
	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Entries, "expired entries are not live")

	for i := 0; i < 1000; i++ {
		_, ok := c.Get(ctx, fmt.Sprintf("list:search=term%d", i))
		assert.False(t, ok)
	}
	assert.Zero(t, c.Len(), "expired reads delete their entry")
}

func TestSweepReclaimsUnreadEntries(t *testing.T) {
	c, clock := newTestCache()
	ctx, cancel := context.WithCancel(context.Background())

	_ = c.Set(ctx, "list:search=once", []byte("x"), time.Minute)
	_ = c.Set(ctx, "detail:url=kept", []byte("y"), time.Hour)
	clock.Advance(2 * time.Minute)

	done := make(chan struct{})
	go func() {
		c.Sweep(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := c.Get(ctx, "detail:url=kept")
	assert.True(t, ok)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sweep did not stop on cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = c.Set(ctx, key, []byte(key), time.Hour)
			v, ok := c.Get(ctx, key)
			if ok {
				assert.Equal(t, key, string(v))
			}
		}()
	}
	wg.Wait()
}
