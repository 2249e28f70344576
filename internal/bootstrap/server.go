package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/ratelimit"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Running jobs
	addServerRunningJob(m, app.Server)
	addTokenSweepJob(m, app.Config, app.TokenService)
	addUsageCleanupJob(m, app.Config, app.UsageService)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.Metrics)

	// Shutdown jobs, in dependency order
	addServerShutdownJob(m, app.Config, app.Server)
	addUsageShutdownJob(m, app.Config, app.UsageService)
	addRedisClientShutdownJob(m, app.RedisClient)
	addClientCacheShutdownJob(m, app.ClientCacheCloser)
	addLimiterStoreShutdownJob(m, app.LimiterStore)
	addDatabaseShutdownJob(m, app.DB)

	// Wait for graceful shutdown
	<-m.Done()
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addTokenSweepJob adds the periodic expired token sweep job
func addTokenSweepJob(m *graceful.Manager, cfg *config.Config, tokenService *services.TokenService) {
	if cfg.TokenSweepInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.TokenSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := tokenService.SweepExpired(); err != nil {
					log.Printf("Failed to sweep expired tokens: %v", err)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addUsageCleanupJob adds periodic usage record cleanup job
func addUsageCleanupJob(m *graceful.Manager, cfg *config.Config, usageService *services.UsageService) {
	if !cfg.UsageAuditEnabled || cfg.UsageRetentionDays <= 0 {
		return
	}

	retention := time.Duration(cfg.UsageRetentionDays) * 24 * time.Hour

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		if deleted, err := usageService.CleanupOldRecords(retention); err != nil {
			log.Printf("Failed to cleanup old usage records: %v", err)
		} else if deleted > 0 {
			log.Printf("Cleaned up %d old usage records", deleted)
		}

		for {
			select {
			case <-ticker.C:
				if deleted, err := usageService.CleanupOldRecords(retention); err != nil {
					log.Printf("Failed to cleanup old usage records: %v", err)
				} else if deleted > 0 {
					log.Printf("Cleaned up %d old usage records", deleted)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	recorder metrics.Recorder,
) {
	if !cfg.MetricsEnabled || cfg.MetricsGaugeInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeInterval)
		defer ticker.Stop()

		// Gauge queries are cheap counts, a process-local cache is enough
		cacheWrapper := metrics.NewCacheWrapper(db, cache.NewMemoryCache[int64]())

		// Update immediately on startup
		updateGaugeMetrics(ctx, cacheWrapper, recorder, cfg.MetricsGaugeInterval)

		for {
			select {
			case <-ticker.C:
				updateGaugeMetrics(ctx, cacheWrapper, recorder, cfg.MetricsGaugeInterval)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addUsageShutdownJob adds usage recorder shutdown handler
func addUsageShutdownJob(m *graceful.Manager, cfg *config.Config, usageService *services.UsageService) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down usage recorder...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.UsageShutdownTimeout)
		defer cancel()

		if err := usageService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down usage recorder: %v", err)
			return err
		}
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		log.Println("Redis connection closed")
		return nil
	})
}

// addClientCacheShutdownJob adds client cache shutdown handler
func addClientCacheShutdownJob(m *graceful.Manager, closer func() error) {
	if closer == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := closer(); err != nil {
			log.Printf("Error closing client cache: %v", err)
		} else {
			log.Println("Client cache closed")
		}
		return nil
	})
}

// addLimiterStoreShutdownJob adds rate limit store shutdown handler
func addLimiterStoreShutdownJob(m *graceful.Manager, limiterStore ratelimit.Store) {
	if limiterStore == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := limiterStore.Close(); err != nil {
			log.Printf("Error closing rate limit store: %v", err)
			return err
		}
		return nil
	})
}

// addDatabaseShutdownJob adds database shutdown handler
func addDatabaseShutdownJob(m *graceful.Manager, db *store.Store) {
	m.AddShutdownJob(func() error {
		log.Println("Closing database connection...")
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
			return err
		}
		log.Println("Database connection closed")
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) {
	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]

	if !exists || now.Sub(lastTime) >= e.rateLimitWindow {
		log.Printf("Database query failed for %s: %v (further errors will be suppressed for %v)",
			operation, err, e.rateLimitWindow)
		e.lastErrorTimes[operation] = now
	}
}

var gaugeErrorLogger = newErrorLogger()

// updateGaugeMetrics refreshes the gauge metrics from cached count queries.
// The cache TTL matches the update interval so each tick hits the database
// at most once per gauge.
func updateGaugeMetrics(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	m metrics.Recorder,
	cacheTTL time.Duration,
) {
	activeTokens, err := cacheWrapper.GetActiveTokensCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_active_tokens")
		gaugeErrorLogger.logIfNeeded("count_active_tokens", err)
	} else {
		m.SetActiveTokensCount(int(activeTokens))
	}

	totalClients, err := cacheWrapper.GetTotalClientsCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_total_clients")
		gaugeErrorLogger.logIfNeeded("count_total_clients", err)
		return
	}

	activeClients, err := cacheWrapper.GetActiveClientsCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_active_clients")
		gaugeErrorLogger.logIfNeeded("count_active_clients", err)
		return
	}

	m.SetClientCounts(int(totalClients), int(activeClients))
}
