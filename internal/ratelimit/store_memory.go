package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded counter arena for single-instance
// deployments. Expired buckets are removed by a janitor goroutine and on
// access, so the arena stays bounded to live windows.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates an in-memory counter store. cleanupInterval governs
// how often expired buckets are swept; zero disables the janitor and leaves
// eviction to access-time checks.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.entries[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &memoryEntry{expiresAt: now.Add(ttl)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) Decr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.count == 0 {
		return 0, nil
	}
	entry.count--
	return entry.count, nil
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// size reports live buckets; test hook.
func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
