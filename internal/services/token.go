package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/util"
)

var (
	// ErrInvalidToken indicates the token is unknown or unusable
	ErrInvalidToken = errors.New("token is invalid")

	// ErrTokenExpired indicates the token lifetime has elapsed
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenRevoked indicates the token was revoked
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrInvalidScope indicates a requested scope is unknown or exceeds the
	// client's registration
	ErrInvalidScope = errors.New("requested scope exceeds client registration")
)

// TokenValidation is the outcome of a successful bearer token validation.
// Scopes holds the intersection of the scopes granted at issuance with the
// client's current registration.
type TokenValidation struct {
	Client *models.Client
	Token  *models.AccessToken
	Scopes string
}

// TokenService issues, validates and revokes opaque tenant access tokens
type TokenService struct {
	store   *store.Store
	config  *config.Config
	clients *ClientService
	metrics metrics.Recorder
}

// NewTokenService creates a new token service
func NewTokenService(s *store.Store, cfg *config.Config, clients *ClientService, m metrics.Recorder) *TokenService {
	return &TokenService{
		store:   s,
		config:  cfg,
		clients: clients,
		metrics: m,
	}
}

// Issue handles the client_credentials grant: it authenticates the client,
// resolves the effective scopes and mints an opaque access token.
func (s *TokenService) Issue(ctx context.Context, clientID, clientSecret, requestedScopes string) (*models.AccessToken, error) {
	start := time.Now()

	// 1. Authenticate the client; unknown IDs, wrong secrets and inactive
	//    clients all surface as ErrInvalidClient
	client, err := s.clients.Authenticate(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	// 2. Resolve scopes: an empty request gets everything the client is
	//    registered for, anything else must be a known subset of it
	scopes := strings.TrimSpace(requestedScopes)
	if scopes == "" {
		scopes = client.Scopes
	} else {
		if unknown := models.UnknownScope(scopes); unknown != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidScope, unknown)
		}
		if !models.ScopeSubset(scopes, client.Scopes) {
			return nil, ErrInvalidScope
		}
		scopes = models.JoinScopes(models.SplitScopes(scopes))
	}

	// 3. Mint and persist the token
	accessToken, err := s.mintToken(client.ClientID, scopes)
	if err != nil {
		s.metrics.RecordTokenIssued(false, time.Since(start))
		return nil, err
	}

	// 4. Stamp the client's last issuance, best effort
	if err := s.store.TouchClientLastUsed(client.ClientID, time.Now()); err != nil {
		log.Printf("[Token] Failed to stamp last use for client %s: %v", client.ClientID, err)
	}

	s.metrics.RecordTokenIssued(true, time.Since(start))
	return accessToken, nil
}

// mintToken generates a prefixed random token and stores its SHA-256 hash.
// A hash collision is retried once with fresh randomness.
func (s *TokenService) mintToken(clientID, scopes string) (*models.AccessToken, error) {
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := util.RandomURLSafe(int64(s.config.TokenEntropyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		rawToken := models.AccessTokenPrefix + raw

		accessToken := &models.AccessToken{
			ID:        uuid.New().String(),
			TokenHash: util.SHA256Hex(rawToken),
			RawToken:  rawToken,
			TokenType: "Bearer",
			Status:    models.TokenStatusActive,
			ClientID:  clientID,
			Scopes:    scopes,
			ExpiresAt: time.Now().Add(s.config.AccessTokenExpiry),
		}

		err = s.store.CreateAccessToken(accessToken)
		if err == nil {
			return accessToken, nil
		}
		if !errors.Is(err, store.ErrDuplicateKey) {
			return nil, fmt.Errorf("failed to save access token: %w", err)
		}
	}
	return nil, errors.New("token hash collided twice")
}

// Validate resolves a raw bearer token to its client. Revocation is reported
// ahead of expiry when both apply, and the client's current record decides:
// a deactivated or deleted client invalidates its tokens immediately.
func (s *TokenService) Validate(ctx context.Context, rawToken string) (*TokenValidation, error) {
	start := time.Now()

	accessToken, err := s.store.GetAccessTokenByHash(util.SHA256Hex(rawToken))
	if err != nil {
		s.metrics.RecordTokenValidation("invalid", time.Since(start))
		return nil, ErrInvalidToken
	}

	if accessToken.IsRevoked() {
		s.metrics.RecordTokenValidation("revoked", time.Since(start))
		return nil, ErrTokenRevoked
	}
	if accessToken.IsExpired() {
		s.metrics.RecordTokenValidation("expired", time.Since(start))
		return nil, ErrTokenExpired
	}

	client, err := s.clients.GetCached(ctx, accessToken.ClientID)
	if err != nil {
		s.metrics.RecordTokenValidation("invalid", time.Since(start))
		if errors.Is(err, ErrClientNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !client.IsActive {
		s.metrics.RecordTokenValidation("invalid", time.Since(start))
		return nil, ErrInvalidToken
	}

	if err := s.store.TouchTokenLastUsed(accessToken.ID, time.Now()); err != nil {
		log.Printf("[Token] Failed to stamp last use for token %s: %v", accessToken.ID, err)
	}

	s.metrics.RecordTokenValidation("valid", time.Since(start))
	return &TokenValidation{
		Client: client,
		Token:  accessToken,
		Scopes: models.IntersectScopes(accessToken.Scopes, client.Scopes),
	}, nil
}

// Revoke handles a client-initiated revocation. Per RFC 7009 the operation
// is idempotent: unknown tokens, already-revoked tokens and tokens owned by
// a different client all succeed without revealing anything.
func (s *TokenService) Revoke(ctx context.Context, clientID, clientSecret, rawToken string) error {
	client, err := s.clients.Authenticate(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}

	accessToken, err := s.store.GetAccessTokenByHash(util.SHA256Hex(rawToken))
	if err != nil {
		return nil
	}
	if accessToken.ClientID != client.ClientID {
		return nil
	}
	if accessToken.IsRevoked() {
		return nil
	}

	if err := s.store.RevokeTokenByHash(accessToken.TokenHash); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.metrics.RecordTokensRevoked("request", 1)

	return nil
}

// RevokeAllForClient revokes every active token of a client and returns how
// many were affected. The reason tags the revocation metric.
func (s *TokenService) RevokeAllForClient(clientID, reason string) (int64, error) {
	revoked, err := s.store.RevokeTokensByClientID(clientID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke tokens for client: %w", err)
	}
	if revoked > 0 {
		s.metrics.RecordTokensRevoked(reason, int(revoked))
	}
	return revoked, nil
}

// ListForClient returns a client's tokens, newest first, with hashes only
func (s *TokenService) ListForClient(clientID string) ([]models.AccessToken, error) {
	return s.store.ListTokensByClientID(clientID)
}

// SweepExpired deletes tokens whose expiry has passed the retention window,
// so recent history stays visible in the admin token listing. With no
// retention configured, expired tokens are deleted right away. Runs
// periodically from the background sweeper.
func (s *TokenService) SweepExpired() (int64, error) {
	cutoff := time.Now()
	if days := s.config.UsageRetentionDays; days > 0 {
		cutoff = cutoff.AddDate(0, 0, -days)
	}

	deleted, err := s.store.DeleteTokensExpiredBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired tokens: %w", err)
	}
	if deleted > 0 {
		s.metrics.RecordTokenSweep(int(deleted))
		log.Printf("[Token] Swept %d expired tokens", deleted)
	}
	return deleted, nil
}
