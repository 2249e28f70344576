package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/talhabinjaved/HireMatch/internal/config"

	"github.com/redis/go-redis/v9"
)

// initializeRateLimitRedisClient opens the go-redis connection that backs
// the per-client hourly counters. It returns a nil client when rate
// limiting is off or the counters run in memory; callers treat nil as
// "no Redis in this deployment".
func initializeRateLimitRedisClient(
	ctx context.Context,
	cfg *config.Config,
) (*redis.Client, error) {
	if !cfg.RateLimitEnabled || cfg.RateLimitStore != config.RateLimitStoreRedis {
		return nil, nil //nolint:nilnil // nothing to connect in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Verify connectivity before handing the client to the limiter
	pingCtx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.RedisAddr, err)
	}

	log.Printf("Rate limit counters on Redis (address: %s, db: %d)", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}
