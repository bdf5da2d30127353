package common

import "time"

// CacheInterface backs the stats and option lookups. CacheService keeps
// values in process; RedisCacheService shares them between replicas and
// hands back decoded JSON, so callers that need a concrete type go through
// CachedAs.
type CacheInterface interface {
	Set(key string, value interface{}, duration time.Duration)

	// Get reports false on a miss or an expired entry.
	Get(key string) (interface{}, bool)

	Delete(key string)

	// GetOrSet runs loader on a miss and stores its result for duration.
	// Loader errors are returned and nothing is cached.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	Close() error
}
