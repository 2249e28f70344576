package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/models"
)

func testClient(id string) models.Client {
	return models.Client{
		ClientID:         id,
		SecretHash:       "$2a$10$abcdefghijklmnopqrstuv",
		Name:             "Acme Recruiting",
		Scopes:           "read write",
		RateLimitPerHour: 1000,
		IsActive:         true,
	}
}

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	want := testClient("hm_test123")
	err := cache.Set(ctx, want.ClientID, want, time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, want.ClientID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.ClientID != want.ClientID || got.Scopes != want.Scopes {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	// Set with very short TTL
	err := cache.Set(ctx, "expire-key", testClient("hm_expire"), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Should be available immediately
	got, err := cache.Get(ctx, "expire-key")
	if err != nil {
		t.Fatalf("Get failed before expiration: %v", err)
	}
	if got.ClientID != "hm_expire" {
		t.Errorf("Expected client hm_expire, got %q", got.ClientID)
	}

	// Wait for expiration
	time.Sleep(100 * time.Millisecond)

	_, err = cache.Get(ctx, "expire-key")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	err := cache.Set(ctx, "del-key", testClient("hm_del"), time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Delete(ctx, "del-key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = cache.Get(ctx, "del-key")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}

	// Deleting a missing key is not an error
	if err := cache.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	if err := cache.Set(ctx, "close-key", testClient("hm_close"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err := cache.Get(ctx, "close-key")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after close, got %v", err)
	}
}

func TestMemoryCache_Health(t *testing.T) {
	cache := NewMemoryCache[models.Client]()

	if err := cache.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("client-%d", n%10)
			_ = cache.Set(ctx, key, testClient(key), time.Minute)
		}(i)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("client-%d", n%10)
			_, _ = cache.Get(ctx, key)
		}(i)
	}
	wg.Wait()
}

func TestMemoryCache_GetWithFetch_CacheMiss(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	var fetchCount atomic.Int32
	fetch := func(ctx context.Context, key string) (models.Client, error) {
		fetchCount.Add(1)
		return testClient(key), nil
	}

	got, err := cache.GetWithFetch(ctx, "hm_fetch", time.Minute, fetch)
	if err != nil {
		t.Fatalf("GetWithFetch failed: %v", err)
	}
	if got.ClientID != "hm_fetch" {
		t.Errorf("Expected client hm_fetch, got %q", got.ClientID)
	}
	if fetchCount.Load() != 1 {
		t.Errorf("Expected 1 fetch, got %d", fetchCount.Load())
	}

	// Second call should hit the cache
	_, err = cache.GetWithFetch(ctx, "hm_fetch", time.Minute, fetch)
	if err != nil {
		t.Fatalf("GetWithFetch failed: %v", err)
	}
	if fetchCount.Load() != 1 {
		t.Errorf("Expected fetch to be skipped on hit, got %d calls", fetchCount.Load())
	}
}

func TestMemoryCache_GetWithFetch_FetchError(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	fetchErr := errors.New("database unavailable")
	_, err := cache.GetWithFetch(ctx, "hm_err", time.Minute,
		func(ctx context.Context, key string) (models.Client, error) {
			return models.Client{}, fetchErr
		})
	if !errors.Is(err, fetchErr) {
		t.Errorf("Expected fetch error to propagate, got %v", err)
	}

	// Error results must not be cached
	_, err = cache.Get(ctx, "hm_err")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after failed fetch, got %v", err)
	}
}

func TestGetWithFetch_Helper(t *testing.T) {
	cache := NewMemoryCache[models.Client]()
	ctx := context.Background()

	var fetchCount atomic.Int32
	fetch := func(ctx context.Context, key string) (models.Client, error) {
		fetchCount.Add(1)
		return testClient(key), nil
	}

	// Exercise the package-level helper against the plain Cache interface
	var c Cache[models.Client] = cache

	got, err := GetWithFetch(ctx, c, "hm_helper", time.Minute, fetch)
	if err != nil {
		t.Fatalf("GetWithFetch helper failed: %v", err)
	}
	if got.ClientID != "hm_helper" {
		t.Errorf("Expected client hm_helper, got %q", got.ClientID)
	}

	_, err = GetWithFetch(ctx, c, "hm_helper", time.Minute, fetch)
	if err != nil {
		t.Fatalf("GetWithFetch helper failed: %v", err)
	}
	if fetchCount.Load() != 1 {
		t.Errorf("Expected 1 fetch, got %d", fetchCount.Load())
	}
}
