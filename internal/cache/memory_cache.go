package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return now.After(i.expiration)
}

// MemoryCache implements Cache with an in-process map and periodic cleanup
type MemoryCache struct {
	items         map[string]*cacheItem
	mutex         sync.RWMutex
	maxMemory     int64
	currentMemory int64
	hits          int64
	misses        int64
	evictions     int64
	done          chan struct{}
	closeOnce     sync.Once
}

// NewMemoryCache creates a new in-memory cache and starts its cleanup loop
func NewMemoryCache(config *CacheConfig) *MemoryCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &MemoryCache{
		items:     make(map[string]*cacheItem),
		maxMemory: config.MaxMemory,
		done:      make(chan struct{}),
	}

	interval := config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go c.cleanupLoop(interval)

	return c
}

// Get retrieves a copy of a value
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	item, ok := c.items[key]
	c.mutex.RUnlock()

	if !ok || item.expired(time.Now()) {
		atomic.AddInt64(&c.misses, 1)
		if ok {
			c.Delete(ctx, key)
		}
		return nil, ErrKeyNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	result := make([]byte, len(item.value))
	copy(result, item.value)
	return result, nil
}

// Set stores a copy of value
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	newItem := &cacheItem{value: valueCopy, expiration: time.Now().Add(ttl)}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if old, ok := c.items[key]; ok {
		c.currentMemory -= itemSize(key, old)
	}
	c.items[key] = newItem
	c.currentMemory += itemSize(key, newItem)
	c.evictIfNeeded(key)
	return nil
}

// Delete removes a value
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.remove(key)
	return nil
}

// DeletePattern removes every key matching pattern
func (c *MemoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key := range c.items {
		if matchPattern(key, pattern) {
			c.remove(key)
		}
	}
	return nil
}

// Exists checks for an unexpired key
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[key]
	return ok && !item.expired(time.Now()), nil
}

// Close stops the cleanup loop and drops all items
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mutex.Lock()
		c.items = make(map[string]*cacheItem)
		c.currentMemory = 0
		c.mutex.Unlock()
	})
	return nil
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	var active int64
	for _, item := range c.items {
		if !item.expired(now) {
			active++
		}
	}

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	return CacheStats{
		Hits:        hits,
		Misses:      misses,
		HitRatio:    hitRatio(hits, misses),
		Keys:        active,
		MemoryUsage: c.currentMemory,
		Evictions:   atomic.LoadInt64(&c.evictions),
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.expired(now) {
			c.remove(key)
		}
	}
}

// evictIfNeeded drops expired items first, then arbitrary ones, until the
// memory limit holds. keep is never evicted. Caller holds the write lock.
func (c *MemoryCache) evictIfNeeded(keep string) {
	if c.maxMemory <= 0 || c.currentMemory <= c.maxMemory {
		return
	}

	now := time.Now()
	for key, item := range c.items {
		if key != keep && item.expired(now) {
			c.remove(key)
			atomic.AddInt64(&c.evictions, 1)
		}
	}

	for key := range c.items {
		if c.currentMemory <= c.maxMemory {
			return
		}
		if key == keep {
			continue
		}
		c.remove(key)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// remove deletes key and updates memory usage. Caller holds the write lock.
func (c *MemoryCache) remove(key string) {
	if item, ok := c.items[key]; ok {
		delete(c.items, key)
		c.currentMemory -= itemSize(key, item)
	}
}

// itemSize estimates memory usage: key + value + 64 bytes overhead
func itemSize(key string, item *cacheItem) int64 {
	return int64(len(key) + len(item.value) + 64)
}

// matchPattern implements glob matching with the * wildcard only
func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return text == pattern
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(text, parts[0]) {
		return false
	}
	pos := len(parts[0])
	last := len(parts) - 1
	for i := 1; i < last; i++ {
		idx := strings.Index(text[pos:], parts[i])
		if idx < 0 {
			return false
		}
		pos += idx + len(parts[i])
	}
	return len(text)-pos >= len(parts[last]) && strings.HasSuffix(text, parts[last])
}
