package common

import (
	"encoding/json"
	"fmt"
	"time"
)

// CachedAs wraps GetOrSet for a concrete type. Values that come back from a
// serialising backend such as Redis are re-decoded into T.
func CachedAs[T any](c CacheInterface, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	var zero T

	val, err := c.GetOrSet(key, ttl, func() (any, error) {
		return loader()
	})
	if err != nil {
		return zero, err
	}
	if typed, ok := val.(T); ok {
		return typed, nil
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return zero, fmt.Errorf("cache %s: %w", key, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("cache %s: %w", key, err)
	}
	return out, nil
}
