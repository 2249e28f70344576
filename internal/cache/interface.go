package cache

import (
	"context"
	"time"
)

// Cache is a typed key-value cache. The server keeps two of them: client
// records keyed by client ID on the token validation path, and int64 counts
// for the metrics gauge refresher.
type Cache[T any] interface {
	// Get returns the value for key, or ErrCacheMiss when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (T, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// Delete removes key
	Delete(ctx context.Context, key string) error

	// Close releases the backend connection
	Close() error

	// Health checks the backend connection
	Health(ctx context.Context) error
}

// CacheWithFetch adds a read-through operation for backends that can dedupe
// concurrent fetches themselves (RueidisAsideCache). Callers that hold a
// plain Cache use the GetWithFetch helper instead.
type CacheWithFetch[T any] interface {
	Cache[T]

	// GetWithFetch returns the cached value for key, calling fetchFunc on
	// a miss and storing its result. Backends with stampede protection run
	// fetchFunc once even under concurrent load.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetchFunc func(ctx context.Context, key string) (T, error),
	) (T, error)
}

// GetWithFetch is the cache-aside fallback for any Cache implementation.
// Concurrent misses on the same key may each call fetchFunc; the token
// validation path tolerates that, it just costs extra client lookups.
func GetWithFetch[T any](
	ctx context.Context,
	c Cache[T],
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fetchFunc(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}
