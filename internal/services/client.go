package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/talhabinjaved/HireMatch/internal/cache"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/util"
)

var (
	// ErrClientNotFound indicates no client exists for the given ID
	ErrClientNotFound = errors.New("client not found")

	// ErrClientNameRequired indicates a create/update request without a name
	ErrClientNameRequired = errors.New("client name is required")

	// ErrUnknownScope indicates a scope outside the recognized set
	ErrUnknownScope = errors.New("unknown scope")

	// ErrInvalidClient covers unknown IDs, wrong secrets and deactivated
	// clients alike, so callers cannot probe which IDs exist
	ErrInvalidClient = errors.New("invalid client credentials")
)

const (
	clientIDEntropyBytes     = 24
	clientSecretEntropyBytes = 48

	// bcrypt digest of a throwaway string; verified against on unknown
	// client IDs so both authentication paths cost one bcrypt compare
	dummySecretHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

func clientCacheKey(clientID string) string {
	return "client:" + clientID
}

// CreateClientRequest carries the admin-supplied fields for a new client
type CreateClientRequest struct {
	Name             string
	Description      string
	Scopes           string
	RateLimitPerHour int
	CreatedBy        string
}

// UpdateClientRequest carries the mutable fields of an existing client
type UpdateClientRequest struct {
	Name             string
	Description      string
	Scopes           string
	RateLimitPerHour int
	IsActive         bool
}

// ClientResponse pairs a client record with its plaintext secret. The secret
// is only populated on create and regenerate; it is never recoverable later.
type ClientResponse struct {
	*models.Client
	ClientSecretPlain string
}

// ClientService manages tenant client registrations and authenticates
// client credentials at the token endpoint.
type ClientService struct {
	store   *store.Store
	config  *config.Config
	cache   cache.CacheWithFetch[models.Client]
	metrics metrics.Recorder
}

// NewClientService creates a new client service
func NewClientService(s *store.Store, cfg *config.Config, c cache.CacheWithFetch[models.Client], m metrics.Recorder) *ClientService {
	return &ClientService{
		store:   s,
		config:  cfg,
		cache:   c,
		metrics: m,
	}
}

// Create registers a new client and returns it along with the plaintext
// secret, which is shown exactly once.
func (s *ClientService) Create(req CreateClientRequest) (*ClientResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrClientNameRequired
	}

	scopes := strings.TrimSpace(req.Scopes)
	if scopes == "" {
		scopes = models.DefaultScopes
	} else {
		if unknown := models.UnknownScope(scopes); unknown != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScope, unknown)
		}
		scopes = models.JoinScopes(models.SplitScopes(scopes))
	}

	clientID, err := util.RandomURLSafe(clientIDEntropyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client ID: %w", err)
	}

	secret, err := util.RandomURLSafe(clientSecretEntropyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client secret: %w", err)
	}

	secretHash, err := util.HashSecret(secret, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	client := &models.Client{
		ClientID:         models.ClientIDPrefix + clientID,
		SecretHash:       secretHash,
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		Scopes:           scopes,
		RateLimitPerHour: s.config.ClampCeiling(req.RateLimitPerHour),
		IsActive:         true,
		CreatedBy:        req.CreatedBy,
	}

	if err := s.store.CreateClient(client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	return &ClientResponse{Client: client, ClientSecretPlain: secret}, nil
}

// Get fetches a client straight from the database
func (s *ClientService) Get(clientID string) (*models.Client, error) {
	client, err := s.store.GetClient(clientID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// GetCached fetches a client through the cache, loading from the database on
// a miss. The token validation hot path goes through here.
func (s *ClientService) GetCached(ctx context.Context, clientID string) (*models.Client, error) {
	client, err := s.cache.GetWithFetch(ctx, clientCacheKey(clientID), s.config.ClientCacheTTL,
		func(ctx context.Context, _ string) (models.Client, error) {
			c, err := s.store.GetClient(clientID)
			if err != nil {
				return models.Client{}, err
			}
			return *c, nil
		})
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// List returns a page of clients ordered by creation time
func (s *ClientService) List(params store.PaginationParams) ([]models.Client, store.PaginationResult, error) {
	return s.store.ListClients(params)
}

// Update applies an admin edit to a client. Scope or status changes take
// effect on the next validation of any outstanding token.
func (s *ClientService) Update(clientID string, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.Get(clientID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrClientNameRequired
	}

	scopes := strings.TrimSpace(req.Scopes)
	if scopes == "" {
		scopes = models.DefaultScopes
	} else {
		if unknown := models.UnknownScope(scopes); unknown != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScope, unknown)
		}
		scopes = models.JoinScopes(models.SplitScopes(scopes))
	}

	client.Name = name
	client.Description = strings.TrimSpace(req.Description)
	client.Scopes = scopes
	client.RateLimitPerHour = s.config.ClampCeiling(req.RateLimitPerHour)
	client.IsActive = req.IsActive

	if err := s.store.UpdateClient(client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	s.InvalidateClientCache(clientID)

	return client, nil
}

// Deactivate disables a client without touching its tokens. Outstanding
// tokens start failing validation immediately because validation re-checks
// the client record.
func (s *ClientService) Deactivate(clientID string) (*models.Client, error) {
	client, err := s.Get(clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return client, nil
	}

	client.IsActive = false
	if err := s.store.UpdateClient(client); err != nil {
		return nil, fmt.Errorf("failed to deactivate client: %w", err)
	}
	s.InvalidateClientCache(clientID)

	return client, nil
}

// Delete removes a client permanently, revoking its tokens first
func (s *ClientService) Delete(clientID string) error {
	if _, err := s.Get(clientID); err != nil {
		return err
	}

	revoked, err := s.store.RevokeTokensByClientID(clientID)
	if err != nil {
		return fmt.Errorf("failed to revoke tokens for client: %w", err)
	}
	if revoked > 0 {
		s.metrics.RecordTokensRevoked("admin", int(revoked))
	}

	if err := s.store.DeleteClient(clientID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	s.InvalidateClientCache(clientID)

	return nil
}

// RegenerateSecret replaces a client's secret and revokes every token issued
// under the old one. The new plaintext secret is returned exactly once.
func (s *ClientService) RegenerateSecret(clientID string) (*ClientResponse, error) {
	client, err := s.Get(clientID)
	if err != nil {
		return nil, err
	}

	secret, err := util.RandomURLSafe(clientSecretEntropyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client secret: %w", err)
	}

	secretHash, err := util.HashSecret(secret, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	client.SecretHash = secretHash
	if err := s.store.UpdateClient(client); err != nil {
		return nil, fmt.Errorf("failed to update client secret: %w", err)
	}
	s.InvalidateClientCache(clientID)

	revoked, err := s.store.RevokeTokensByClientID(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke tokens for client: %w", err)
	}
	if revoked > 0 {
		s.metrics.RecordTokensRevoked("regenerate", int(revoked))
	}

	return &ClientResponse{Client: client, ClientSecretPlain: secret}, nil
}

// Authenticate verifies a client ID and secret pair. Unknown IDs, wrong
// secrets and deactivated clients all return ErrInvalidClient.
func (s *ClientService) Authenticate(ctx context.Context, clientID, clientSecret string) (*models.Client, error) {
	client, err := s.store.GetClient(clientID)
	if err != nil {
		util.VerifySecret(clientSecret, dummySecretHash)
		s.metrics.RecordClientAuth(false)
		return nil, ErrInvalidClient
	}

	if !util.VerifySecret(clientSecret, client.SecretHash) {
		s.metrics.RecordClientAuth(false)
		return nil, ErrInvalidClient
	}

	if !client.IsActive {
		s.metrics.RecordClientAuth(false)
		return nil, ErrInvalidClient
	}

	s.metrics.RecordClientAuth(true)
	return client, nil
}

// InvalidateClientCache drops the cached copy of a client after a mutation
func (s *ClientService) InvalidateClientCache(clientID string) {
	if err := s.cache.Delete(context.Background(), clientCacheKey(clientID)); err != nil {
		log.Printf("[Client] Failed to invalidate cache for client %s: %v", clientID, err)
	}
}
