package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestInitializeMetrics(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := &config.Config{MetricsEnabled: enabled}
		m := initializeMetrics(cfg)
		require.NotNil(t, m)
	}
}

func TestInitializeClientCacheMemory(t *testing.T) {
	cfg := &config.Config{
		ClientCacheType:  config.ClientCacheTypeMemory,
		CacheInitTimeout: time.Second,
	}
	c, closer, err := initializeClientCache(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NotNil(t, closer)
	assert.NoError(t, closer())
}

func TestInitializeClientLimiterMemory(t *testing.T) {
	cfg := &config.Config{RateLimitCleanupInterval: time.Minute}
	limiterStore, limiter := initializeClientLimiter(cfg, nil)
	require.NotNil(t, limiterStore)
	require.NotNil(t, limiter)
	assert.NoError(t, limiterStore.Close())
}

func TestSetupIPRateLimitingDisabled(t *testing.T) {
	limits := setupIPRateLimiting(&config.Config{IPRateLimitEnabled: false})
	require.NotNil(t, limits.token)
	require.NotNil(t, limits.login)

	// Verify noop middlewares don't panic
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.NotPanics(t, func() { limits.token(c) })
}

func TestSetupIPRateLimitingMemory(t *testing.T) {
	cfg := &config.Config{
		IPRateLimitEnabled:       true,
		RateLimitStore:           "memory",
		TokenEndpointRateLimit:   60,
		LoginRateLimit:           10,
		RateLimitCleanupInterval: time.Minute,
	}
	limits := setupIPRateLimiting(cfg)
	require.NotNil(t, limits.token)
	require.NotNil(t, limits.login)
}

func TestCreateHTTPServer(t *testing.T) {
	srv := createHTTPServer(
		&config.Config{ServerAddr: ":8080"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)
	require.NotNil(t, srv)
	assert.Equal(t, ":8080", srv.Addr)
}

func TestGinModeMap(t *testing.T) {
	assert.Equal(t, gin.ReleaseMode, ginModeMap[true])
	assert.Equal(t, gin.DebugMode, ginModeMap[false])
}

func TestErrorLogger(t *testing.T) {
	el := newErrorLogger()
	require.NotNil(t, el)
	assert.NotNil(t, el.lastErrorTimes)

	// Both calls should not panic
	assert.NotPanics(t, func() { el.logIfNeeded("test_op", assert.AnError) })
	assert.NotPanics(t, func() { el.logIfNeeded("test_op", assert.AnError) })
}

func smokeConfig() *config.Config {
	return &config.Config{
		ServerAddr:               ":0",
		BcryptCost:               bcrypt.MinCost,
		AccessTokenExpiry:        time.Hour,
		TokenEntropyBytes:        32,
		JWTSecret:                "bootstrap-test-secret",
		JWTIssuer:                "hirematch-test",
		JWTAccessExpiry:          15 * time.Minute,
		JWTRefreshExpiry:         24 * time.Hour,
		RateLimitDefault:         1000,
		RateLimitMax:             10000,
		RateLimitCleanupInterval: time.Minute,
		ClientCacheType:          config.ClientCacheTypeMemory,
		ClientCacheTTL:           time.Minute,
		CacheInitTimeout:         time.Second,
	}
}

// TestSetupRouterSmoke wires the full stack against an in-memory database and
// checks that every route group responds from the right layer.
func TestSetupRouterSmoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := smokeConfig()

	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	recorder := metrics.Init(false)
	clientCache := cache.NewMemoryCache[models.Client]()
	usageService := services.NewUsageService(s, false, 0, recorder)

	clientService, tokenService, adminService, documentService, authenticator :=
		initializeServices(cfg, s, clientCache, recorder)
	h := initializeHandlers(tokenService, adminService, clientService, usageService, documentService)

	limiterStore, clientLimiter := initializeClientLimiter(cfg, nil)
	defer func() { _ = limiterStore.Close() }()

	r := setupRouter(cfg, s, h, authenticator, clientLimiter, usageService, recorder)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Health endpoint reports the database connection
	w := serve(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	// Metrics endpoint is absent when disabled
	w = serve(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Token endpoint is wired and rejects anonymous requests
	w = serve(http.MethodPost, "/oauth/token", "grant_type=client_credentials")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_client")

	// Management API requires a super admin JWT
	w = serve(http.MethodGet, "/api/admin/clients", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Tenant API requires an access token
	w = serve(http.MethodGet, "/api/cvs", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown routes fall through
	w = serve(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupMetricsEndpointTokenAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupMetricsEndpoint(r, &config.Config{MetricsEnabled: true, MetricsToken: "sekrit"})

	// No token
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct token
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	cfg := smokeConfig()
	cfg.AdminBootstrapPassword = "first-run-password"
	cfg.AdminBootstrapEmail = "ops@hirematch.local"

	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	recorder := metrics.Init(false)
	clientCache := cache.NewMemoryCache[models.Client]()
	_, _, adminService, _, _ := initializeServices(cfg, s, clientCache, recorder)

	ensureBootstrapAdmin(cfg, adminService)

	count, err := adminService.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Seeding is idempotent
	ensureBootstrapAdmin(cfg, adminService)
	count, err = adminService.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The seeded account can log in
	pair, admin, err := adminService.Login(context.Background(), "admin", "first-run-password")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "admin", admin.Username)
}
