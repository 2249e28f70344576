package bootstrap

import (
	"log"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/middleware"
	"github.com/talhabinjaved/HireMatch/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ipLimiters holds the per-IP rate limiting middlewares guarding the
// unauthenticated endpoints
type ipLimiters struct {
	token gin.HandlerFunc
	login gin.HandlerFunc
}

// setupIPRateLimiting configures per-IP rate limiting for the token and admin
// login endpoints
func setupIPRateLimiting(cfg *config.Config) ipLimiters {
	// Return no-op middlewares when IP rate limiting is disabled
	noOpMiddleware := func(c *gin.Context) { c.Next() }
	if !cfg.IPRateLimitEnabled {
		return ipLimiters{token: noOpMiddleware, login: noOpMiddleware}
	}

	log.Printf("IP rate limiting enabled (store: %s)", cfg.RateLimitStore)

	createLimiter := func(requestsPerMinute int, endpoint string) gin.HandlerFunc {
		limiter, err := middleware.NewIPRateLimiter(middleware.IPRateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Store:             cfg.RateLimitStore,
			RedisAddr:         cfg.RedisAddr,
			RedisPassword:     cfg.RedisPassword,
			RedisDB:           cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to create IP rate limiter for %s: %v", endpoint, err)
		}
		return limiter
	}

	return ipLimiters{
		token: createLimiter(cfg.TokenEndpointRateLimit, "/oauth/token"),
		login: createLimiter(cfg.LoginRateLimit, "/auth/admin/login"),
	}
}

// initializeClientLimiter builds the per-client hourly window limiter. The
// memory store runs its own sweep janitor; the redis store shares the
// externally managed client.
func initializeClientLimiter(
	cfg *config.Config,
	redisClient *redis.Client,
) (ratelimit.Store, *ratelimit.Limiter) {
	var store ratelimit.Store
	if redisClient != nil {
		store = ratelimit.NewRedisStore(redisClient, "hirematch:ratelimit:")
		log.Println("Client rate limiting: redis store (shared across instances)")
	} else {
		store = ratelimit.NewMemoryStore(cfg.RateLimitCleanupInterval)
		log.Println("Client rate limiting: memory store (single instance only)")
	}
	return store, ratelimit.New(store, cfg.RateLimitCountRejected)
}
