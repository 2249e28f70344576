package bootstrap

import (
	"log"
	"net/http"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/middleware"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/ratelimit"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	authenticator *services.Authenticator,
	clientLimiter *ratelimit.Limiter,
	usageService *services.UsageService,
	recorder metrics.Recorder,
) *gin.Engine {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup per-IP rate limiting for the public endpoints
	ipLimits := setupIPRateLimiting(cfg)

	// Setup all routes
	setupAllRoutes(r, cfg, h, authenticator, clientLimiter, usageService, ipLimits, recorder)

	// Log server startup info
	logServerStartup(cfg)

	return r
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuth(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	authenticator *services.Authenticator,
	clientLimiter *ratelimit.Limiter,
	usageService *services.UsageService,
	ipLimits ipLimiters,
	recorder metrics.Recorder,
) {
	// OAuth endpoints (public, client credentials in the request)
	oauth := r.Group("/oauth")
	{
		oauth.POST("/token", ipLimits.token, h.token.Token)
		oauth.POST("/revoke", h.token.Revoke)
	}

	// Super admin session endpoints (public, credentials in the request)
	adminAuth := r.Group("/auth/admin")
	{
		adminAuth.POST("/login", ipLimits.login, h.auth.Login)
		adminAuth.POST("/refresh", h.auth.Refresh)
	}

	// Management API (requires a super admin JWT)
	admin := r.Group("/api/admin")
	admin.Use(middleware.Authenticate(authenticator), middleware.RequireAdmin())
	{
		admin.POST("/clients", h.client.Create)
		admin.GET("/clients", h.client.List)
		admin.GET("/clients/:client_id", h.client.Get)
		admin.PATCH("/clients/:client_id", h.client.Update)
		admin.DELETE("/clients/:client_id", h.client.Delete)
		admin.POST("/clients/:client_id/regenerate-secret", h.client.RegenerateSecret)
		admin.GET("/clients/:client_id/tokens", h.client.ListTokens)
		admin.POST("/clients/:client_id/revoke-tokens", h.client.RevokeTokens)

		admin.GET("/analytics/clients/:client_id", h.analytics.ClientAnalytics)
		admin.GET("/analytics/overview", h.analytics.Overview)
	}

	// Tenant API (requires a client access token). Usage recording sits in
	// front of authentication so rejected requests are captured too.
	api := r.Group("/api")
	api.Use(
		middleware.UsageRecording(usageService),
		middleware.Authenticate(authenticator),
		middleware.ClientRateLimit(clientLimiter, cfg, recorder),
	)
	{
		cvs := api.Group("/cvs")
		{
			cvs.POST("", middleware.RequireScope(models.ScopeWrite), h.documents.CreateCV)
			cvs.GET("", middleware.RequireScope(models.ScopeRead), h.documents.ListCVs)
			cvs.GET("/:id", middleware.RequireScope(models.ScopeRead), h.documents.GetCV)
			cvs.DELETE("/:id", middleware.RequireScope(models.ScopeWrite), h.documents.DeleteCV)
		}

		jobs := api.Group("/jobs")
		{
			jobs.POST("", middleware.RequireScope(models.ScopeWrite), h.documents.CreateJob)
			jobs.GET("", middleware.RequireScope(models.ScopeRead), h.documents.ListJobs)
			jobs.GET("/:id", middleware.RequireScope(models.ScopeRead), h.documents.GetJob)
			jobs.DELETE("/:id", middleware.RequireScope(models.ScopeWrite), h.documents.DeleteJob)
		}
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("HireMatch auth server starting on %s", cfg.ServerAddr)
	log.Printf("Token endpoint: POST %s/oauth/token", cfg.ServerAddr)
	log.Printf("Database driver: %s", cfg.DatabaseDriver)
}
