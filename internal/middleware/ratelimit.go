package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/ratelimit"
	"github.com/talhabinjaved/HireMatch/internal/services"
)

// IPRateLimitConfig configures the per-IP limiter guarding unauthenticated
// endpoints (token issuance, admin login)
type IPRateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration

	// Store selects the counter backend: "memory" or "redis"
	Store         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewIPRateLimiter builds a per-IP rate limiting middleware. Unauthenticated
// endpoints cannot be limited per client, so the source address stands in.
func NewIPRateLimiter(cfg IPRateLimitConfig) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(cfg.RequestsPerMinute),
	}

	var store limiter.Store
	switch cfg.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}

		var err error
		store, err = limiterRedis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:          "ratelimit:ip",
			CleanUpInterval: cfg.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis rate limit store: %w", err)
		}
	default:
		store = memory.NewStore()
	}

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests from this address, try again later",
			})
		})), nil
}

// ClientRateLimit enforces each client's hourly request ceiling. Must run
// after Authenticate; super-admin JWTs pass through unmetered. When the
// counter store cannot answer, the request is rejected rather than admitted
// unmetered.
func ClientRateLimit(l *ratelimit.Limiter, cfg *config.Config, m metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.RateLimitEnabled {
			c.Next()
			return
		}

		principal, ok := GetPrincipal(c)
		if !ok {
			c.Next()
			return
		}
		clientPrincipal, ok := principal.(services.ClientPrincipal)
		if !ok {
			c.Next()
			return
		}

		ceiling := cfg.ClampCeiling(clientPrincipal.Client.RateLimitPerHour)
		result, err := l.Admit(c.Request.Context(), clientPrincipal.Client.ClientID, ceiling)
		if err != nil {
			m.RecordRateLimitDecision("error")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":             "temporarily_unavailable",
				"error_description": "Rate limiting is unavailable, try again later",
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.RecordRateLimitDecision("rejected")
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limit_exceeded",
				"error_description": "Hourly request ceiling reached",
			})
			return
		}

		m.RecordRateLimitDecision("admitted")
		c.Next()
	}
}
