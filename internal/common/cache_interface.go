package common

import (
	"encoding/json"
	"time"
)

// CacheInterface defines the contract for cache implementations
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise
	Get(key string) (interface{}, bool)

	// Exists reports whether key is present. Unlike Get it surfaces backend
	// failures, for callers that must not treat an outage as a miss.
	Exists(key string) (bool, error)

	// Delete removes a value from cache by key
	Delete(key string)

	// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetOrSetTyped is GetOrSet with the result converted to T. loaded reports
// whether loader ran, i.e. the read was a miss.
func GetOrSetTyped[T any](c CacheInterface, key string, duration time.Duration, loader func() (T, error)) (value T, loaded bool, err error) {
	val, err := c.GetOrSet(key, duration, func() (any, error) {
		loaded = true
		return loader()
	})
	if err != nil {
		return value, loaded, err
	}
	out, ok := convertCached[T](val)
	if !ok {
		// Undecodable entry; serve a fresh value and overwrite it.
		fresh, err := loader()
		if err != nil {
			return value, true, err
		}
		c.Set(key, fresh, duration)
		return fresh, true, nil
	}
	return out, loaded, nil
}

// convertCached turns a cached value back into T. The in-memory cache hands
// back the stored value; Redis hands back decoded JSON, which is re-decoded.
func convertCached[T any](val interface{}) (T, bool) {
	var zero T
	if typed, ok := val.(T); ok {
		return typed, true
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}
