package handlers

import (
	"context"
	"net/http"
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

func setupAnalyticsTestEnv(t *testing.T) (*gin.Engine, *store.Store, *services.ClientService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		BcryptCost:        bcrypt.MinCost,
		AccessTokenExpiry: time.Hour,
		TokenEntropyBytes: 32,
		RateLimitDefault:  1000,
		RateLimitMax:      10000,
		ClientCacheTTL:    time.Minute,
	}

	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	noop := metrics.NewNoopMetrics()
	clientSvc := services.NewClientService(s, cfg, cache.NewMemoryCache[models.Client](), noop)
	usageSvc := services.NewUsageService(s, false, 0, noop)
	handler := NewAnalyticsHandler(usageSvc, clientSvc)

	r := gin.New()
	r.GET("/api/admin/analytics/clients/:client_id", handler.ClientAnalytics)
	r.GET("/api/admin/analytics/overview", handler.Overview)

	return r, s, clientSvc
}

func seedUsage(t *testing.T, s *store.Store, clientID string, n int, outcome string) {
	t.Helper()
	records := make([]models.UsageRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.UsageRecord{
			ClientID:       clientID,
			Endpoint:       "/api/cvs",
			Method:         "GET",
			StatusCode:     http.StatusOK,
			Outcome:        outcome,
			ResponseTimeMS: 4.2,
			IP:             "10.0.0.1",
		})
	}
	require.NoError(t, s.CreateUsageRecords(records))
}

func TestClientAnalyticsEndpoint(t *testing.T) {
	r, s, clients := setupAnalyticsTestEnv(t)
	client, _ := createM2MClient(t, clients, "read write")

	seedUsage(t, s, client.ClientID, 3, models.OutcomeAdmitted)
	seedUsage(t, s, client.ClientID, 1, models.OutcomeDeniedRate)
	_, err := services.NewDocumentService(s).CreateCV(client.ClientID, services.CreateCVRequest{
		Filename: "jane.pdf",
	})
	require.NoError(t, err)

	w := doBare(t, r, http.MethodGet, "/api/admin/analytics/clients/"+client.ClientID+"?days=7")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)

	assert.Equal(t, client.ClientID, resp["client_id"])
	totals := resp["totals"].(map[string]any)
	assert.Equal(t, float64(4), totals["total_requests"])
	assert.Equal(t, float64(3), totals["admitted"])
	assert.Equal(t, float64(1), totals["denied_rate"])
	assert.Equal(t, float64(1), resp["cv_count"])
	assert.Equal(t, float64(0), resp["job_count"])

	endpoints := resp["top_endpoints"].([]any)
	require.NotEmpty(t, endpoints)
	top := endpoints[0].(map[string]any)
	assert.Equal(t, "/api/cvs", top["endpoint"])
	assert.Equal(t, float64(4), top["count"])
}

func TestClientAnalyticsEndpoint_UnknownClient(t *testing.T) {
	r, _, _ := setupAnalyticsTestEnv(t)

	w := doBare(t, r, http.MethodGet, "/api/admin/analytics/clients/hm_missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeJSON(t, w)["error"])
}

func TestAnalyticsOverviewEndpoint(t *testing.T) {
	r, s, clients := setupAnalyticsTestEnv(t)
	busy, _ := createM2MClient(t, clients, "read")
	quiet, _ := createM2MClient(t, clients, "read")

	seedUsage(t, s, busy.ClientID, 5, models.OutcomeAdmitted)
	seedUsage(t, s, quiet.ClientID, 2, models.OutcomeAdmitted)

	w := doBare(t, r, http.MethodGet, "/api/admin/analytics/overview")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)

	totals := resp["totals"].(map[string]any)
	assert.Equal(t, float64(7), totals["total_requests"])
	assert.Equal(t, float64(2), resp["total_clients"])
	assert.Equal(t, float64(2), resp["active_clients"])

	topClients := resp["top_clients"].([]any)
	require.NotEmpty(t, topClients)
	first := topClients[0].(map[string]any)
	assert.Equal(t, busy.ClientID, first["client_id"])
	assert.Equal(t, float64(5), first["count"])
}

func TestAnalyticsWindowClamping(t *testing.T) {
	r, s, clients := setupAnalyticsTestEnv(t)
	client, _ := createM2MClient(t, clients, "read")
	seedUsage(t, s, client.ClientID, 2, models.OutcomeAdmitted)

	// Nonsense windows fall back to the 30 day default instead of erroring
	for _, query := range []string{"?days=0", "?days=9999", "?days=abc", ""} {
		w := doBare(t, r, http.MethodGet, "/api/admin/analytics/clients/"+client.ClientID+query)
		require.Equal(t, http.StatusOK, w.Code)
		totals := decodeJSON(t, w)["totals"].(map[string]any)
		assert.Equal(t, float64(2), totals["total_requests"])
	}
}
