package cache

import "time"

// CacheService is the caching contract used across the application.
type CacheService interface {
	// Get returns the cached value and true when the key is present
	// and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value under key for the given duration.
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a single key.
	Delete(key string)

	// Flush drops every cached item.
	Flush()
}
