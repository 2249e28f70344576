package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func setupAdminTestEnv(t *testing.T) (*gin.Engine, *services.ClientService, *services.TokenService) {
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
	tokenSvc := services.NewTokenService(s, cfg, clientSvc, noop)
	handler := NewClientHandler(clientSvc, tokenSvc)

	r := gin.New()
	r.POST("/api/admin/clients", handler.Create)
	r.GET("/api/admin/clients", handler.List)
	r.GET("/api/admin/clients/:client_id", handler.Get)
	r.PATCH("/api/admin/clients/:client_id", handler.Update)
	r.DELETE("/api/admin/clients/:client_id", handler.Delete)
	r.POST("/api/admin/clients/:client_id/regenerate-secret", handler.RegenerateSecret)
	r.GET("/api/admin/clients/:client_id/tokens", handler.ListTokens)
	r.POST("/api/admin/clients/:client_id/revoke-tokens", handler.RevokeTokens)

	return r, clientSvc, tokenSvc
}

// doJSON sends a JSON request with an arbitrary method.
func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doBare sends a body-less request.
func doBare(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestClientEndpoints_Lifecycle(t *testing.T) {
	r, _, _ := setupAdminTestEnv(t)

	// Create
	w := doJSON(t, r, http.MethodPost, "/api/admin/clients", gin.H{
		"name":                "Acme ATS",
		"description":         "Acme's applicant tracker",
		"scopes":              "read write",
		"rate_limit_per_hour": 500,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON(t, w)
	assert.NotEmpty(t, created["client_secret"])
	client := created["client"].(map[string]any)
	clientID := client["client_id"].(string)
	assert.Equal(t, "Acme ATS", client["name"])
	assert.Equal(t, "read write", client["scopes"])
	assert.Equal(t, float64(500), client["rate_limit_per_hour"])
	assert.Equal(t, true, client["is_active"])
	// The hash must never appear on the wire
	_, hasHash := client["secret_hash"]
	assert.False(t, hasHash)

	// Get never re-discloses the secret
	w = doBare(t, r, http.MethodGet, "/api/admin/clients/"+clientID)
	require.Equal(t, http.StatusOK, w.Code)
	getResp := decodeJSON(t, w)
	got := getResp["client"].(map[string]any)
	assert.Equal(t, clientID, got["client_id"])
	assert.Nil(t, getResp["client_secret"])

	// Update
	w = doJSON(t, r, http.MethodPatch, "/api/admin/clients/"+clientID, gin.H{
		"name":                "Acme ATS v2",
		"scopes":              "read",
		"rate_limit_per_hour": 900,
		"is_active":           true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeJSON(t, w)["client"].(map[string]any)
	assert.Equal(t, "Acme ATS v2", updated["name"])
	assert.Equal(t, "read", updated["scopes"])
	assert.Equal(t, float64(900), updated["rate_limit_per_hour"])

	// Delete without ?hard deactivates and keeps the record
	w = doBare(t, r, http.MethodDelete, "/api/admin/clients/"+clientID)
	require.Equal(t, http.StatusOK, w.Code)
	deactivated := decodeJSON(t, w)["client"].(map[string]any)
	assert.Equal(t, false, deactivated["is_active"])

	w = doBare(t, r, http.MethodGet, "/api/admin/clients/"+clientID)
	assert.Equal(t, http.StatusOK, w.Code)

	// Hard delete removes it
	w = doBare(t, r, http.MethodDelete, "/api/admin/clients/"+clientID+"?hard=true")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doBare(t, r, http.MethodGet, "/api/admin/clients/"+clientID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateClientEndpoint_Validation(t *testing.T) {
	r, _, _ := setupAdminTestEnv(t)

	w := doJSON(t, r, http.MethodPost, "/api/admin/clients", gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeJSON(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, "/api/admin/clients", gin.H{
		"name":   "Bad Scopes",
		"scopes": "read frobnicate",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeJSON(t, w)
	assert.Equal(t, "invalid_request", resp["error"])
	assert.Contains(t, resp["error_description"], "frobnicate")
}

func TestClientEndpoints_NotFound(t *testing.T) {
	r, _, _ := setupAdminTestEnv(t)

	w := doBare(t, r, http.MethodGet, "/api/admin/clients/hm_missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeJSON(t, w)["error"])

	w = doJSON(t, r, http.MethodPatch, "/api/admin/clients/hm_missing", gin.H{
		"name":      "Ghost",
		"is_active": true,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doBare(t, r, http.MethodDelete, "/api/admin/clients/hm_missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doBare(t, r, http.MethodPost, "/api/admin/clients/hm_missing/regenerate-secret")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegenerateSecretEndpoint(t *testing.T) {
	r, clients, tokens := setupAdminTestEnv(t)
	client, oldSecret := createM2MClient(t, clients, "read")

	issued, err := tokens.Issue(context.Background(), client.ClientID, oldSecret, "")
	require.NoError(t, err)

	w := doBare(t, r, http.MethodPost, "/api/admin/clients/"+client.ClientID+"/regenerate-secret")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)
	newSecret := resp["client_secret"].(string)
	assert.NotEqual(t, oldSecret, newSecret)

	// Old secret stops working, tokens under it are revoked
	_, err = tokens.Issue(context.Background(), client.ClientID, oldSecret, "")
	assert.ErrorIs(t, err, services.ErrInvalidClient)
	_, err = tokens.Validate(context.Background(), issued.RawToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)

	_, err = tokens.Issue(context.Background(), client.ClientID, newSecret, "")
	assert.NoError(t, err)
}

func TestClientTokenEndpoints(t *testing.T) {
	r, clients, tokens := setupAdminTestEnv(t)
	client, plainSecret := createM2MClient(t, clients, "read")

	first, err := tokens.Issue(context.Background(), client.ClientID, plainSecret, "")
	require.NoError(t, err)
	_, err = tokens.Issue(context.Background(), client.ClientID, plainSecret, "")
	require.NoError(t, err)

	// Listing shows hashes only, never raw tokens
	w := doBare(t, r, http.MethodGet, "/api/admin/clients/"+client.ClientID+"/tokens")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), first.RawToken)
	listed := decodeJSON(t, w)["tokens"].([]any)
	require.Len(t, listed, 2)
	entry := listed[0].(map[string]any)
	assert.NotEmpty(t, entry["token_hash"])
	assert.Equal(t, models.TokenStatusActive, entry["status"])

	// Bulk revocation
	w = doBare(t, r, http.MethodPost, "/api/admin/clients/"+client.ClientID+"/revoke-tokens")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeJSON(t, w)["revoked"])

	_, err = tokens.Validate(context.Background(), first.RawToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)
}

func TestListClientsEndpoint_Pagination(t *testing.T) {
	r, clients, _ := setupAdminTestEnv(t)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := clients.Create(services.CreateClientRequest{Name: name})
		require.NoError(t, err)
	}

	w := doBare(t, r, http.MethodGet, "/api/admin/clients?page=1&per_page=2")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON(t, w)
	assert.Len(t, resp["clients"], 2)
	pagination := resp["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["total_pages"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, false, pagination["has_prev"])
}
