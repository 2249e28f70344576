package bootstrap

import (
	"context"
	"net/http"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/ratelimit"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                *store.Store
	Metrics           metrics.Recorder
	ClientCache       cache.CacheWithFetch[models.Client]
	ClientCacheCloser func() error
	RedisClient       *redis.Client
	LimiterStore      ratelimit.Store
	ClientLimiter     *ratelimit.Limiter

	// Services
	UsageService    *services.UsageService
	ClientService   *services.ClientService
	TokenService    *services.TokenService
	AdminService    *services.AdminService
	DocumentService *services.DocumentService
	Authenticator   *services.Authenticator

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}
	ctx := context.Background()

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, caches, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.Metrics = initializeMetrics(app.Config)

	// Client cache (token validation hot path)
	app.ClientCache, app.ClientCacheCloser, err = initializeClientCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for the distributed per-client rate limit store)
	app.RedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	// Per-client hourly limiter
	app.LimiterStore, app.ClientLimiter = initializeClientLimiter(app.Config, app.RedisClient)

	return nil
}

// initializeBusinessLayer sets up services and seeds the first super admin
func (app *Application) initializeBusinessLayer() {
	// Usage recorder (fire-and-forget, owns its worker goroutine)
	app.UsageService = services.NewUsageService(
		app.DB,
		app.Config.UsageAuditEnabled,
		app.Config.UsageBufferSize,
		app.Metrics,
	)

	app.ClientService,
		app.TokenService,
		app.AdminService,
		app.DocumentService,
		app.Authenticator = initializeServices(
		app.Config,
		app.DB,
		app.ClientCache,
		app.Metrics,
	)

	ensureBootstrapAdmin(app.Config, app.AdminService)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(
		app.TokenService,
		app.AdminService,
		app.ClientService,
		app.UsageService,
		app.DocumentService,
	)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.Authenticator,
		app.ClientLimiter,
		app.UsageService,
		app.Metrics,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}
