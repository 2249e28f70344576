package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/cache"
)

// countStoreStub satisfies metricsStore and records how often each query ran,
// so tests can verify the cache actually shields the database.
type countStoreStub struct {
	activeTokens int64
	totalClients int64
	activeCount  int64
	err          error

	tokenCalls  int
	clientCalls int
}

func (s *countStoreStub) CountActiveTokens(now time.Time) (int64, error) {
	s.tokenCalls++
	return s.activeTokens, s.err
}

func (s *countStoreStub) CountClients() (total, active int64, err error) {
	s.clientCalls++
	return s.totalClients, s.activeCount, s.err
}

func TestCacheWrapper_GetActiveTokensCount_CacheHit(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	stub := &countStoreStub{err: errors.New("store should not be queried on cache hit")}

	wrapper := &CacheWrapper{store: stub, cache: memCache}

	// Pre-populate cache
	_ = memCache.Set(ctx, "tokens:active", 42, time.Minute)

	count, err := wrapper.GetActiveTokensCount(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if count != 42 {
		t.Errorf("Expected count 42, got %d", count)
	}
	if stub.tokenCalls != 0 {
		t.Errorf("Expected no store queries on cache hit, got %d", stub.tokenCalls)
	}
}

func TestCacheWrapper_GetActiveTokensCount_CacheMiss(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	stub := &countStoreStub{activeTokens: 100}

	wrapper := &CacheWrapper{store: stub, cache: memCache}

	count, err := wrapper.GetActiveTokensCount(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 100 {
		t.Errorf("Expected count 100, got %d", count)
	}

	// Second read must come from cache
	count, err = wrapper.GetActiveTokensCount(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 100 {
		t.Errorf("Expected count 100, got %d", count)
	}
	if stub.tokenCalls != 1 {
		t.Errorf("Expected 1 store query, got %d", stub.tokenCalls)
	}
}

func TestCacheWrapper_GetActiveTokensCount_DBError(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	dbErr := errors.New("database connection lost")
	stub := &countStoreStub{err: dbErr}

	wrapper := &CacheWrapper{store: stub, cache: memCache}

	_, err := wrapper.GetActiveTokensCount(ctx, time.Minute)
	if !errors.Is(err, dbErr) {
		t.Fatalf("Expected database error, got %v", err)
	}

	// Errors must not be cached
	_, err = wrapper.GetActiveTokensCount(ctx, time.Minute)
	if !errors.Is(err, dbErr) {
		t.Fatalf("Expected database error on retry, got %v", err)
	}
	if stub.tokenCalls != 2 {
		t.Errorf("Expected 2 store queries, got %d", stub.tokenCalls)
	}
}

func TestCacheWrapper_ClientCounts(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	stub := &countStoreStub{totalClients: 7, activeCount: 5}

	wrapper := &CacheWrapper{store: stub, cache: memCache}

	total, err := wrapper.GetTotalClientsCount(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 7 {
		t.Errorf("Expected 7 total clients, got %d", total)
	}

	active, err := wrapper.GetActiveClientsCount(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if active != 5 {
		t.Errorf("Expected 5 active clients, got %d", active)
	}

	// Each count lives under its own key, so both reads hit the store once
	if stub.clientCalls != 2 {
		t.Errorf("Expected 2 store queries, got %d", stub.clientCalls)
	}

	// Subsequent reads are served from cache
	if _, err := wrapper.GetTotalClientsCount(ctx, time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stub.clientCalls != 2 {
		t.Errorf("Expected cached read, store queried %d times", stub.clientCalls)
	}
}

func TestCacheWrapper_CacheExpiration(t *testing.T) {
	ctx := context.Background()
	memCache := cache.NewMemoryCache[int64]()
	stub := &countStoreStub{activeTokens: 9}

	wrapper := &CacheWrapper{store: stub, cache: memCache}

	if _, err := wrapper.GetActiveTokensCount(ctx, 50*time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	// Expired entry forces a fresh query
	if _, err := wrapper.GetActiveTokensCount(ctx, 50*time.Millisecond); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stub.tokenCalls != 2 {
		t.Errorf("Expected 2 store queries after expiry, got %d", stub.tokenCalls)
	}
}
