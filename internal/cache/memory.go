package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local Cache for single-instance deployments.
// Expiry is lazy: a dead entry sits in the map until the next Get or Set
// of the same key replaces it.
type MemoryCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
}

type entry[T any] struct {
	val      T
	deadline time.Time
}

func (e entry[T]) live(now time.Time) bool {
	return now.Before(e.deadline)
}

var _ CacheWithFetch[struct{}] = (*MemoryCache[struct{}])(nil)

func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{entries: make(map[string]entry[T])}
}

// Get returns the live value under key, or ErrCacheMiss.
func (m *MemoryCache[T]) Get(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !e.live(time.Now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return e.val, nil
}

// Set stores value under key for ttl, replacing any previous entry.
func (m *MemoryCache[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry[T]{val: value, deadline: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (m *MemoryCache[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close drops all entries. The cache stays usable afterwards.
func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry[T])
	m.mu.Unlock()
	return nil
}

// Health always reports healthy; there is no backend to probe.
func (m *MemoryCache[T]) Health(_ context.Context) error {
	return nil
}

// GetWithFetch returns the cached value or, on a miss, calls fetchFunc and
// stores its result for ttl. Concurrent misses on one key may each fetch;
// only the rueidis-aside backend deduplicates those.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := m.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fetchFunc(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = m.Set(ctx, key, value, ttl)
	return value, nil
}
