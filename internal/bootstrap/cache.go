package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeClientCache initializes the client record cache used on the token
// validation hot path (always enabled, defaults to memory)
func initializeClientCache(
	ctx context.Context,
	cfg *config.Config,
) (cache.CacheWithFetch[models.Client], func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.ClientCacheType {
	case config.ClientCacheTypeRedisAside:
		c, err := cache.NewRueidisAsideCache[models.Client](
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			"hirematch:clients:",
			cfg.ClientCacheClientTTL,
			cfg.ClientCacheSizePerConn,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis-aside client cache: %w", err)
		}
		log.Printf(
			"Client cache: redis-aside (addr=%s, db=%d, client_ttl=%s, cache_size_per_conn=%dMB)",
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.ClientCacheClientTTL,
			cfg.ClientCacheSizePerConn,
		)
		return c, c.Close, nil

	case config.ClientCacheTypeRedis:
		c, err := cache.NewRueidisCache[models.Client](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			"hirematch:clients:",
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis client cache: %w", err)
		}
		log.Printf("Client cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[models.Client]()
		log.Println("Client cache: memory (single instance only)")
		return c, c.Close, nil
	}
}
