package services

import (
	"context"
	"errors"
	"strings"

	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/token"
)

var (
	// ErrMissingCredentials indicates a request without a bearer token
	ErrMissingCredentials = errors.New("missing bearer credentials")

	// ErrInsufficientScope indicates the token lacks the required scope
	ErrInsufficientScope = errors.New("token lacks the required scope")

	// ErrAdminRequired indicates a management endpoint was called without
	// super-admin credentials
	ErrAdminRequired = errors.New("super admin credentials required")

	// ErrAdminNotTenant indicates a super-admin token was presented to a
	// tenant-data endpoint, which only client tokens may access
	ErrAdminNotTenant = errors.New("super admin tokens cannot access tenant data")
)

// Principal identifies the caller of a protected endpoint: a tenant client
// presenting an opaque access token, or a super admin presenting a JWT.
type Principal interface {
	principal()
}

// ClientPrincipal is an authenticated tenant client. Scopes holds the
// effective scopes computed at validation time.
type ClientPrincipal struct {
	Client *models.Client
	Token  *models.AccessToken
	Scopes string
}

// AdminPrincipal is an authenticated super admin
type AdminPrincipal struct {
	Admin *models.SuperAdmin
}

func (ClientPrincipal) principal() {}
func (AdminPrincipal) principal()  {}

// Authenticator resolves bearer credentials to a principal
type Authenticator struct {
	tokens   *TokenService
	admins   *AdminService
	provider *token.Provider
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(tokens *TokenService, admins *AdminService, p *token.Provider) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		admins:   admins,
		provider: p,
	}
}

// Resolve classifies a bearer value by prefix and validates it. Opaque
// tenant tokens carry the issuance prefix; everything else is treated as a
// super-admin JWT.
func (a *Authenticator) Resolve(ctx context.Context, bearer string) (Principal, error) {
	if bearer == "" {
		return nil, ErrMissingCredentials
	}

	if strings.HasPrefix(bearer, models.AccessTokenPrefix) {
		validation, err := a.tokens.Validate(ctx, bearer)
		if err != nil {
			return nil, err
		}
		return ClientPrincipal{
			Client: validation.Client,
			Token:  validation.Token,
			Scopes: validation.Scopes,
		}, nil
	}

	claims, err := a.provider.VerifyAccess(bearer)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	admin, err := a.admins.GetByID(claims.AdminID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !admin.IsActive {
		return nil, ErrInvalidToken
	}

	return AdminPrincipal{Admin: admin}, nil
}

// CheckScope authorizes a tenant-data operation. Super-admin tokens manage
// the platform and never read tenant documents, so they are rejected here.
func CheckScope(p Principal, scope string) error {
	switch principal := p.(type) {
	case ClientPrincipal:
		if !models.HasScope(principal.Scopes, scope) {
			return ErrInsufficientScope
		}
		return nil
	case AdminPrincipal:
		return ErrAdminNotTenant
	default:
		return ErrMissingCredentials
	}
}

// CheckAdmin authorizes a management operation
func CheckAdmin(p Principal) error {
	if _, ok := p.(AdminPrincipal); !ok {
		return ErrAdminRequired
	}
	return nil
}
