package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/util"
)

func newTokenService(t *testing.T) (*TokenService, *ClientService, *store.Store) {
	t.Helper()

	s := setupTestStore(t)
	cfg := testConfig()
	c := cache.NewMemoryCache[models.Client]()
	t.Cleanup(func() { c.Close() })
	m := metrics.Init(false)
	clients := NewClientService(s, cfg, c, m)
	return NewTokenService(s, cfg, clients, m), clients, s
}

func createTestClient(t *testing.T, clients *ClientService, scopes string) (*models.Client, string) {
	t.Helper()

	resp, err := clients.Create(CreateClientRequest{Name: "Acme Recruiting", Scopes: scopes})
	require.NoError(t, err)
	return resp.Client, resp.ClientSecretPlain
}

func insertRawToken(t *testing.T, s *store.Store, clientID, raw, status string, expiresAt time.Time) {
	t.Helper()

	require.NoError(t, s.CreateAccessToken(&models.AccessToken{
		ID:        uuid.New().String(),
		TokenHash: util.SHA256Hex(raw),
		TokenType: "Bearer",
		Status:    status,
		ClientID:  clientID,
		Scopes:    "read",
		ExpiresAt: expiresAt,
	}))
}

func TestIssueToken(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read write")

	accessToken, err := svc.Issue(ctx, client.ClientID, secret, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(accessToken.RawToken, models.AccessTokenPrefix))
	assert.Equal(t, util.SHA256Hex(accessToken.RawToken), accessToken.TokenHash)
	assert.Equal(t, "Bearer", accessToken.TokenType)
	assert.Equal(t, "read write", accessToken.Scopes)
	assert.WithinDuration(t, time.Now().Add(time.Hour), accessToken.ExpiresAt, time.Minute)

	// The issued token validates back to its client
	validation, err := svc.Validate(ctx, accessToken.RawToken)
	require.NoError(t, err)
	assert.Equal(t, client.ClientID, validation.Client.ClientID)
	assert.Equal(t, "read write", validation.Scopes)
}

func TestIssueTokenScopeSubset(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read write")

	accessToken, err := svc.Issue(ctx, client.ClientID, secret, "read")
	require.NoError(t, err)
	assert.Equal(t, "read", accessToken.Scopes)
}

func TestIssueTokenScopeExceedsRegistration(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")

	_, err := svc.Issue(ctx, client.ClientID, secret, "read write")
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = svc.Issue(ctx, client.ClientID, secret, "frobnicate")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestIssueTokenBadCredentials(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")

	_, err := svc.Issue(ctx, client.ClientID, "wrong-secret", "")
	assert.ErrorIs(t, err, ErrInvalidClient)

	_, err = clients.Deactivate(client.ClientID)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, client.ClientID, secret, "")
	assert.ErrorIs(t, err, ErrInvalidClient)
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _, _ := newTokenService(t)

	_, err := svc.Validate(context.Background(), models.AccessTokenPrefix+"never_issued")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	svc, clients, s := newTokenService(t)
	ctx := context.Background()

	client, _ := createTestClient(t, clients, "read")
	raw := models.AccessTokenPrefix + "expired_token"
	insertRawToken(t, s, client.ClientID, raw, models.TokenStatusActive, time.Now().Add(-time.Minute))

	_, err := svc.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRevokedBeatsExpired(t *testing.T) {
	svc, clients, s := newTokenService(t)
	ctx := context.Background()

	client, _ := createTestClient(t, clients, "read")
	raw := models.AccessTokenPrefix + "revoked_and_expired"
	insertRawToken(t, s, client.ClientID, raw, models.TokenStatusRevoked, time.Now().Add(-time.Minute))

	_, err := svc.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateReflectsClientChanges(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read write")
	accessToken, err := svc.Issue(ctx, client.ClientID, secret, "")
	require.NoError(t, err)

	// Narrowing the registration shrinks the effective scopes of tokens
	// already in flight
	_, err = clients.Update(client.ClientID, UpdateClientRequest{
		Name:     client.Name,
		Scopes:   "read",
		IsActive: true,
	})
	require.NoError(t, err)

	validation, err := svc.Validate(ctx, accessToken.RawToken)
	require.NoError(t, err)
	assert.Equal(t, "read", validation.Scopes)
	assert.Equal(t, "read write", validation.Token.Scopes)

	// Deactivating the client kills its tokens immediately
	_, err = clients.Deactivate(client.ClientID)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, accessToken.RawToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeToken(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")

	first, err := svc.Issue(ctx, client.ClientID, secret, "")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, client.ClientID, secret, "")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, client.ClientID, secret, first.RawToken))

	_, err = svc.Validate(ctx, first.RawToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The client's other tokens are untouched
	_, err = svc.Validate(ctx, second.RawToken)
	assert.NoError(t, err)

	// Revoking again succeeds silently
	assert.NoError(t, svc.Revoke(ctx, client.ClientID, secret, first.RawToken))
}

func TestRevokeUnknownToken(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")

	assert.NoError(t, svc.Revoke(ctx, client.ClientID, secret, models.AccessTokenPrefix+"never_issued"))
}

func TestRevokeOtherClientsToken(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	victim, victimSecret := createTestClient(t, clients, "read")
	attackerResp, err := clients.Create(CreateClientRequest{Name: "Rival Recruiting", Scopes: "read"})
	require.NoError(t, err)

	accessToken, err := svc.Issue(ctx, victim.ClientID, victimSecret, "")
	require.NoError(t, err)

	// A different client revoking the token is a silent no-op
	err = svc.Revoke(ctx, attackerResp.ClientID, attackerResp.ClientSecretPlain, accessToken.RawToken)
	assert.NoError(t, err)

	_, err = svc.Validate(ctx, accessToken.RawToken)
	assert.NoError(t, err)
}

func TestRevokeRequiresValidCredentials(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")
	accessToken, err := svc.Issue(ctx, client.ClientID, secret, "")
	require.NoError(t, err)

	err = svc.Revoke(ctx, client.ClientID, "wrong-secret", accessToken.RawToken)
	assert.ErrorIs(t, err, ErrInvalidClient)
}

func TestRevokeAllForClient(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")

	var raws []string
	for i := 0; i < 3; i++ {
		accessToken, err := svc.Issue(ctx, client.ClientID, secret, "")
		require.NoError(t, err)
		raws = append(raws, accessToken.RawToken)
	}

	revoked, err := svc.RevokeAllForClient(client.ClientID, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(3), revoked)

	for _, raw := range raws {
		_, err := svc.Validate(ctx, raw)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	}

	revoked, err = svc.RevokeAllForClient(client.ClientID, "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(0), revoked)
}

func TestListForClient(t *testing.T) {
	svc, clients, _ := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")
	for i := 0; i < 2; i++ {
		_, err := svc.Issue(ctx, client.ClientID, secret, "")
		require.NoError(t, err)
	}

	tokens, err := svc.ListForClient(client.ClientID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	for _, accessToken := range tokens {
		assert.Empty(t, accessToken.RawToken)
	}
}

func TestSweepExpired(t *testing.T) {
	svc, clients, s := newTokenService(t)
	ctx := context.Background()

	client, secret := createTestClient(t, clients, "read")

	insertRawToken(t, s, client.ClientID, models.AccessTokenPrefix+"sweep_one",
		models.TokenStatusActive, time.Now().Add(-time.Hour))
	insertRawToken(t, s, client.ClientID, models.AccessTokenPrefix+"sweep_two",
		models.TokenStatusRevoked, time.Now().Add(-time.Minute))

	live, err := svc.Issue(ctx, client.ClientID, secret, "")
	require.NoError(t, err)

	deleted, err := svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.Validate(ctx, live.RawToken)
	assert.NoError(t, err)
}

func TestSweepExpiredRetentionWindow(t *testing.T) {
	s := setupTestStore(t)
	cfg := testConfig()
	cfg.UsageRetentionDays = 7
	c := cache.NewMemoryCache[models.Client]()
	t.Cleanup(func() { c.Close() })
	m := metrics.Init(false)
	clients := NewClientService(s, cfg, c, m)
	svc := NewTokenService(s, cfg, clients, m)

	client, _ := createTestClient(t, clients, "read")

	insertRawToken(t, s, client.ClientID, models.AccessTokenPrefix+"old_expired",
		models.TokenStatusActive, time.Now().AddDate(0, 0, -8))
	insertRawToken(t, s, client.ClientID, models.AccessTokenPrefix+"fresh_expired",
		models.TokenStatusActive, time.Now().Add(-time.Hour))

	// Only the token past the retention window is removed
	deleted, err := svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	tokens, err := svc.ListForClient(client.ClientID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, util.SHA256Hex(models.AccessTokenPrefix+"fresh_expired"), tokens[0].TokenHash)
}
