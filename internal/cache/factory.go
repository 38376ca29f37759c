package cache

import "fmt"

// NewCache creates a cache backend from configuration
func NewCache(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Backend {
	case CacheTypeMemory, "":
		return NewMemoryCache(config), nil
	case CacheTypeRedis:
		return NewRedisCache(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCacheType, config.Backend)
	}
}

// NewCacheService builds the backend and wraps it in a GenericCacheService.
// A disabled config yields a service whose reads miss and whose writes are no-ops.
func NewCacheService(config *CacheConfig) (*GenericCacheService, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if !config.Enabled {
		return NewGenericCacheService(nil, config), nil
	}

	backend, err := NewCache(config)
	if err != nil {
		return nil, err
	}
	return NewGenericCacheService(backend, config), nil
}
