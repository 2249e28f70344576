package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Provider signs and verifies super-admin JWTs (HS256). Machine clients
// never see these; their credentials are opaque tokens handled elsewhere.
type Provider struct {
	secret        []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewProvider creates a JWT provider from configuration
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		secret:        []byte(cfg.JWTSecret),
		issuer:        cfg.JWTIssuer,
		accessExpiry:  cfg.JWTAccessExpiry,
		refreshExpiry: cfg.JWTRefreshExpiry,
	}
}

// signJWT creates a signed JWT with the given type discriminator and expiry
func (p *Provider) signJWT(adminID, username, tokenType string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      adminID,
		"username": username,
		"type":     tokenType,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
		"iss":      p.issuer,
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

// GeneratePair mints an access/refresh pair for a super-admin.
func (p *Provider) GeneratePair(adminID, username string) (*Pair, error) {
	accessExpiresAt := time.Now().Add(p.accessExpiry)
	access, err := p.signJWT(adminID, username, typeAccess, accessExpiresAt)
	if err != nil {
		return nil, err
	}

	refresh, err := p.signJWT(adminID, username, typeRefresh, time.Now().Add(p.refreshExpiry))
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(p.accessExpiry.Seconds()),
	}, nil
}

// VerifyAccess verifies an access JWT and returns its claims.
func (p *Provider) VerifyAccess(tokenString string) (*Claims, error) {
	return p.verify(tokenString, typeAccess, ErrInvalidToken, ErrExpiredToken)
}

// VerifyRefresh verifies a refresh JWT and returns its claims. An access
// token presented here is rejected; the discriminator keeps the two
// lifetimes from being traded against each other.
func (p *Provider) VerifyRefresh(tokenString string) (*Claims, error) {
	return p.verify(tokenString, typeRefresh, ErrInvalidRefreshToken, ErrExpiredRefreshToken)
}

func (p *Provider) verify(tokenString, wantType string, invalidErr, expiredErr error) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		// Check if it's an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, expiredErr
		}
		return nil, fmt.Errorf("%w: %v", invalidErr, err)
	}

	if !token.Valid {
		return nil, invalidErr
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, invalidErr
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != wantType {
		return nil, invalidErr
	}

	adminID, _ := claims["sub"].(string)
	if adminID == "" {
		return nil, invalidErr
	}
	username, _ := claims["username"].(string)

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, invalidErr
	}

	return &Claims{
		AdminID:   adminID,
		Username:  username,
		TokenType: tokenType,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
