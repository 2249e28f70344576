package metrics

import (
	"context"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/store"
)

// metricsStore defines the interface for database operations needed by CacheWrapper.
// This interface allows for easier testing without requiring a full store.Store.
type metricsStore interface {
	CountActiveTokens(now time.Time) (int64, error)
	CountClients() (total, active int64, err error)
}

// CacheWrapper provides a read-through cache for metrics gauge data.
// It queries the database on cache miss and updates the cache for subsequent
// requests, so the periodic gauge updater does not hammer the database.
type CacheWrapper struct {
	store metricsStore
	cache cache.Cache[int64]
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(store *store.Store, cache cache.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
	}
}

// GetActiveTokensCount retrieves the count of unexpired active access tokens.
func (m *CacheWrapper) GetActiveTokensCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(
		ctx,
		"tokens:active",
		ttl,
		func() (int64, error) {
			return m.store.CountActiveTokens(time.Now())
		},
	)
}

// GetTotalClientsCount retrieves the count of registered clients.
func (m *CacheWrapper) GetTotalClientsCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(
		ctx,
		"clients:total",
		ttl,
		func() (int64, error) {
			total, _, err := m.store.CountClients()
			return total, err
		},
	)
}

// GetActiveClientsCount retrieves the count of active clients.
func (m *CacheWrapper) GetActiveClientsCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(
		ctx,
		"clients:active",
		ttl,
		func() (int64, error) {
			_, active, err := m.store.CountClients()
			return active, err
		},
	)
}

// getCountWithCache retrieves a count using the cache-aside pattern.
func (m *CacheWrapper) getCountWithCache(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func() (int64, error),
) (int64, error) {
	return cache.GetWithFetch(
		ctx,
		m.cache,
		key,
		ttl,
		func(ctx context.Context, key string) (int64, error) {
			return fetchFunc()
		},
	)
}
