package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	config := DefaultCacheConfig()
	config.CleanupInterval = time.Hour
	c := NewMemoryCache(config)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewCache(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		config := DefaultCacheConfig()
		config.Backend = CacheTypeMemory

		c, err := NewCache(config)
		require.NoError(t, err)
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "test", []byte("value"), time.Minute))

		value, err := c.Get(ctx, "test")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)

		require.NoError(t, c.Delete(ctx, "test"))
		_, err = c.Get(ctx, "test")
		assert.Equal(t, ErrKeyNotFound, err)
	})

	t.Run("invalid backend", func(t *testing.T) {
		config := DefaultCacheConfig()
		config.Backend = CacheType("invalid")

		_, err := NewCache(config)
		assert.ErrorIs(t, err, ErrInvalidCacheType)
	})
}

func TestCacheType_IsValid(t *testing.T) {
	assert.True(t, CacheTypeMemory.IsValid())
	assert.True(t, CacheTypeRedis.IsValid())
	assert.False(t, CacheType("memcached").IsValid())
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	exists, err := c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.True(t, exists)

	time.Sleep(30 * time.Millisecond)

	exists, err = c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = c.Get(ctx, "short")
	assert.Equal(t, ErrKeyNotFound, err)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	original := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", original, time.Minute))
	original[0] = 'z'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	for _, key := range []string{"jobly:jobs:1", "jobly:jobs:2", "jobly:companies:c1"} {
		require.NoError(t, c.Set(ctx, key, []byte("x"), time.Minute))
	}

	require.NoError(t, c.DeletePattern(ctx, "jobly:jobs:*"))

	for key, want := range map[string]bool{
		"jobly:jobs:1":       false,
		"jobly:jobs:2":       false,
		"jobly:companies:c1": true,
	} {
		exists, err := c.Exists(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, exists, key)
	}
}

func TestMemoryCache_EvictsOverLimit(t *testing.T) {
	config := DefaultCacheConfig()
	config.MaxMemory = 200
	config.CleanupInterval = time.Hour
	c := NewMemoryCache(config)
	defer c.Close()

	ctx := context.Background()
	for _, key := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Set(ctx, key, make([]byte, 50), time.Minute))
	}

	stats := c.Stats()
	assert.LessOrEqual(t, stats.MemoryUsage, int64(200))
	assert.Greater(t, stats.Evictions, int64(0))

	exists, err := c.Exists(ctx, "d")
	require.NoError(t, err)
	assert.True(t, exists, "most recent key survives eviction")
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.0001)
	assert.Equal(t, int64(1), stats.Keys)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = c.Set(ctx, key, []byte{byte(i)}, time.Minute)
			_, _ = c.Get(ctx, key)
			_ = c.DeletePattern(ctx, "z*")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(20), c.Stats().Keys)
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		text, pattern string
		want          bool
	}{
		{"anything", "*", true},
		{"jobs:1", "jobs:1", true},
		{"jobs:1", "jobs:2", false},
		{"jobs:1", "jobs:*", true},
		{"companies:1", "jobs:*", false},
		{"jobly:jobs:1", "*:jobs:*", true},
		{"jobs:1:detail", "jobs:*:detail", true},
		{"jobs:detail", "jobs:*:detail", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPattern(tt.text, tt.pattern), "%s ~ %s", tt.text, tt.pattern)
	}
}

func TestParseRedisInfo(t *testing.T) {
	info := "# Memory\r\nused_memory:1024\r\nused_memory_human:1K\r\n# Keyspace\r\ndb0:keys=10,expires=0,avg_ttl=0\r\ndb1:keys=5,expires=1,avg_ttl=0\r\n"
	assert.Equal(t, int64(1024), parseRedisMemoryUsage(info))
	assert.Equal(t, int64(15), parseRedisKeyCount(info))
	assert.Equal(t, int64(0), parseRedisMemoryUsage(""))
}

type sampleJob struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestGenericCacheService_RoundTrip(t *testing.T) {
	config := DefaultCacheConfig()
	config.Prefix = "jobly"
	svc := NewGenericCacheService(newTestMemoryCache(t), config)
	ctx := context.Background()

	require.NoError(t, svc.CacheData(ctx, "jobs:1", sampleJob{ID: 1, Title: "Dev"}))

	var got sampleJob
	require.NoError(t, svc.GetCached(ctx, "jobs:1", &got))
	assert.Equal(t, sampleJob{ID: 1, Title: "Dev"}, got)

	exists, err := svc.cache.Exists(ctx, "jobly:jobs:1")
	require.NoError(t, err)
	assert.True(t, exists, "prefix gains a trailing colon")

	require.NoError(t, svc.InvalidateKey(ctx, "jobs:1"))
	err = svc.GetCached(ctx, "jobs:1", &got)
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	stats := svc.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Deletes)
	require.NotNil(t, stats.Backend)
	assert.Equal(t, int64(1), stats.Backend.Hits)
}

func TestGenericCacheService_InvalidatePattern(t *testing.T) {
	svc := NewGenericCacheService(newTestMemoryCache(t), DefaultCacheConfig())
	ctx := context.Background()

	require.NoError(t, svc.CacheData(ctx, "jobs:1", 1))
	require.NoError(t, svc.CacheData(ctx, "jobs:2", 2))
	require.NoError(t, svc.InvalidatePattern(ctx, "jobs:*"))

	var v int
	assert.ErrorIs(t, svc.GetCached(ctx, "jobs:1", &v), ErrKeyNotFound)
	assert.ErrorIs(t, svc.GetCached(ctx, "jobs:2", &v), ErrKeyNotFound)
}

func TestGenericCacheService_Disabled(t *testing.T) {
	config := DefaultCacheConfig()
	config.Enabled = false

	svc, err := NewCacheService(config)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	ctx := context.Background()
	var v int
	assert.ErrorIs(t, svc.CacheData(ctx, "jobs:1", 1), ErrCacheDisabled)
	assert.ErrorIs(t, svc.GetCached(ctx, "jobs:1", &v), ErrCacheDisabled)
	assert.NoError(t, svc.InvalidateKey(ctx, "jobs:1"))
	assert.NoError(t, svc.Close())

	var nilSvc *GenericCacheService
	assert.False(t, nilSvc.IsEnabled())
	assert.NoError(t, nilSvc.InvalidatePattern(ctx, "jobs:*"))
	assert.Equal(t, ServiceStats{}, nilSvc.GetStats())
	assert.NoError(t, nilSvc.Close())
}

func TestGenericCacheService_InvalidKeys(t *testing.T) {
	svc := NewGenericCacheService(newTestMemoryCache(t), DefaultCacheConfig())
	ctx := context.Background()

	assert.ErrorIs(t, svc.CacheData(ctx, "", 1), ErrInvalidKey)
	assert.ErrorIs(t, svc.CacheData(ctx, "has space", 1), ErrInvalidKey)
	assert.ErrorIs(t, svc.CacheData(ctx, string(make([]byte, 251)), 1), ErrInvalidKey)
}

func TestGenericCacheService_UnmarshalFailure(t *testing.T) {
	backend := newTestMemoryCache(t)
	svc := NewGenericCacheService(backend, DefaultCacheConfig())
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, svc.buildKey("jobs:1"), []byte("not json"), time.Minute))

	var got sampleJob
	assert.ErrorIs(t, svc.GetCached(ctx, "jobs:1", &got), ErrDeserializationFailed)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	config := DefaultCacheConfig()
	config.Backend = CacheTypeRedis
	config.Redis.Address = addr

	c, err := NewCache(config)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	key := "jobly-test:" + time.Now().Format("150405.000000")

	require.NoError(t, c.Set(ctx, key, []byte("value"), time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, c.DeletePattern(ctx, "jobly-test:*"))
	_, err = c.Get(ctx, key)
	assert.Equal(t, ErrKeyNotFound, err)
}
