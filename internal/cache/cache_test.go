package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("ads:header", []string{"a", "b"}, time.Minute)

	v, ok := c.Get("ads:header")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)

	_, ok = c.Get("ads:footer")
	assert.False(t, ok)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v", 1*time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(1100 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size, "expired entry should be evicted on read")
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", 1, 0)

	c.now = func() time.Time { return now.Add(100 * 24 * time.Hour) }
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().Size)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_BackgroundSweep(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Close()

	c.Set("short", 1, 10*time.Millisecond)
	c.Set("long", 2, time.Hour)

	assert.Eventually(t, func() bool {
		return c.Stats().Size == 1
	}, time.Second, 10*time.Millisecond)

	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1, time.Minute)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Size)
	assert.InDelta(t, 66.66, s.HitRate(), 0.1)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			c.Set(key, i, time.Minute)
			c.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Stats().Size)
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(time.Minute)
	c.Close()
	c.Close()
}
