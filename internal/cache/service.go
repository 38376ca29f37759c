package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hollyabrams/express-jobly/internal/pkg/log"
)

// ErrInvalidKey is returned for empty or malformed keys
var ErrInvalidKey = errors.New("invalid cache key")

// GenericCacheService stores JSON-encoded values under a configured prefix
type GenericCacheService struct {
	cache  Cache
	config *CacheConfig
	stats  serviceStats
}

type serviceStats struct {
	hits    int64
	misses  int64
	errors  int64
	sets    int64
	deletes int64
}

// ServiceStats is a snapshot of GenericCacheService counters
type ServiceStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Errors  int64 `json:"errors"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`

	Backend *CacheStats `json:"backend,omitempty"`
}

// NewGenericCacheService creates a new generic cache service
func NewGenericCacheService(cache Cache, config *CacheConfig) *GenericCacheService {
	if config == nil {
		config = DefaultCacheConfig()
	}
	return &GenericCacheService{cache: cache, config: config}
}

// GetCached retrieves and unmarshals cached data into target
func (gcs *GenericCacheService) GetCached(ctx context.Context, key string, target interface{}) error {
	if !gcs.IsEnabled() {
		atomic.AddInt64(&gcs.stats.misses, 1)
		return ErrCacheDisabled
	}
	if err := validateKey(key); err != nil {
		return err
	}

	fullKey := gcs.buildKey(key)
	data, err := gcs.cache.Get(ctx, fullKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			atomic.AddInt64(&gcs.stats.misses, 1)
		} else {
			atomic.AddInt64(&gcs.stats.errors, 1)
			log.Error("Cache get error for key %s: %v", fullKey, err)
		}
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache data unmarshal error for key %s: %v", fullKey, err)
		return fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
	}

	atomic.AddInt64(&gcs.stats.hits, 1)
	return nil
}

// CacheData marshals and stores data with the configured TTL, or ttl[0] when given
func (gcs *GenericCacheService) CacheData(ctx context.Context, key string, data interface{}, ttl ...time.Duration) error {
	if !gcs.IsEnabled() {
		return ErrCacheDisabled
	}
	if err := validateKey(key); err != nil {
		return err
	}

	cacheTTL := gcs.config.TTL
	if len(ttl) > 0 && ttl[0] > 0 {
		cacheTTL = ttl[0]
	}

	payload, err := json.Marshal(data)
	if err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Set(ctx, fullKey, payload, cacheTTL); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache set error for key %s: %v", fullKey, err)
		return err
	}

	atomic.AddInt64(&gcs.stats.sets, 1)
	return nil
}

// InvalidateKey removes a single key
func (gcs *GenericCacheService) InvalidateKey(ctx context.Context, key string) error {
	if !gcs.IsEnabled() {
		return nil
	}
	if err := validateKey(key); err != nil {
		return err
	}

	fullKey := gcs.buildKey(key)
	if err := gcs.cache.Delete(ctx, fullKey); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache delete error for key %s: %v", fullKey, err)
		return err
	}

	atomic.AddInt64(&gcs.stats.deletes, 1)
	return nil
}

// InvalidatePattern removes every key matching pattern under the prefix
func (gcs *GenericCacheService) InvalidatePattern(ctx context.Context, pattern string) error {
	if !gcs.IsEnabled() {
		return nil
	}

	fullPattern := gcs.buildKey(pattern)
	if err := gcs.cache.DeletePattern(ctx, fullPattern); err != nil {
		atomic.AddInt64(&gcs.stats.errors, 1)
		log.Error("Cache pattern delete error for %s: %v", fullPattern, err)
		return err
	}

	atomic.AddInt64(&gcs.stats.deletes, 1)
	return nil
}

// GetStats returns the service counters and, when a backend is attached, its stats
func (gcs *GenericCacheService) GetStats() ServiceStats {
	if gcs == nil {
		return ServiceStats{}
	}
	stats := ServiceStats{
		Hits:    atomic.LoadInt64(&gcs.stats.hits),
		Misses:  atomic.LoadInt64(&gcs.stats.misses),
		Errors:  atomic.LoadInt64(&gcs.stats.errors),
		Sets:    atomic.LoadInt64(&gcs.stats.sets),
		Deletes: atomic.LoadInt64(&gcs.stats.deletes),
	}
	if gcs.cache != nil {
		backend := gcs.cache.Stats()
		stats.Backend = &backend
	}
	return stats
}

// Close closes the underlying backend
func (gcs *GenericCacheService) Close() error {
	if gcs != nil && gcs.cache != nil {
		return gcs.cache.Close()
	}
	return nil
}

// IsEnabled returns whether caching is enabled
func (gcs *GenericCacheService) IsEnabled() bool {
	return gcs != nil && gcs.config.Enabled && gcs.cache != nil
}

// buildKey constructs the full cache key with prefix
func (gcs *GenericCacheService) buildKey(key string) string {
	prefix := gcs.config.Prefix
	if prefix == "" {
		return key
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	for _, char := range key {
		if char <= 32 || char >= 127 {
			return fmt.Errorf("%w: contains invalid character", ErrInvalidKey)
		}
	}
	if len(key) > 250 {
		return fmt.Errorf("%w: key too long (max 250 characters)", ErrInvalidKey)
	}
	return nil
}
