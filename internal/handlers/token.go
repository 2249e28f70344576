package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talhabinjaved/HireMatch/internal/services"
)

const (
	// https://datatracker.ietf.org/doc/html/rfc6749#section-4.4
	GrantTypeClientCredentials = "client_credentials"
)

type TokenHandler struct {
	tokenService *services.TokenService
}

func NewTokenHandler(ts *services.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: ts}
}

// Token is the OAuth2 token endpoint. Only the client_credentials grant is
// supported; machine clients exchange their ID and secret for an opaque
// access token.
func (h *TokenHandler) Token(c *gin.Context) {
	grantType := c.PostForm("grant_type")

	switch grantType {
	case GrantTypeClientCredentials:
		h.handleClientCredentialsGrant(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported_grant_type",
			"error_description": "Supported grant types: client_credentials",
		})
	}
}

// handleClientCredentialsGrant handles the client_credentials grant type
// (RFC 6749 §4.4). Client authentication is accepted via HTTP Basic Auth
// (preferred per RFC 6749 §2.3.1) or as client_id / client_secret form-body
// parameters. No refresh token is issued in the response.
func (h *TokenHandler) handleClientCredentialsGrant(c *gin.Context) {
	clientID, clientSecret, ok := clientCredentials(c)
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="hirematch"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_client",
			"error_description": "Client authentication required: use HTTP Basic Auth or provide client_id and client_secret in the request body",
		})
		return
	}

	requestedScopes := c.PostForm("scope") // Optional

	accessToken, err := h.tokenService.Issue(
		c.Request.Context(),
		clientID,
		clientSecret,
		requestedScopes,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidClient):
			// RFC 6749 §5.2: use 401 + WWW-Authenticate for invalid_client
			c.Header("WWW-Authenticate", `Basic realm="hirematch"`)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":             "invalid_client",
				"error_description": "Client authentication failed",
			})
		case errors.Is(err, services.ErrInvalidScope):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "invalid_scope",
				"error_description": "Requested scope is unknown or exceeds the client registration",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":             "server_error",
				"error_description": "Token issuance failed",
			})
		}
		return
	}

	// RFC 6749 §4.4.3: response MUST NOT include a refresh_token
	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken.RawToken,
		"token_type":   accessToken.TokenType,
		"expires_in":   int(time.Until(accessToken.ExpiresAt).Seconds()),
		"scope":        accessToken.Scopes,
	})
}

// Revoke is the RFC 7009 revocation endpoint. The caller must authenticate
// as a client; past that, the endpoint answers 200 whether the token was
// live, already revoked, unknown or owned by someone else, so it cannot be
// used to probe for valid tokens.
func (h *TokenHandler) Revoke(c *gin.Context) {
	// RFC 7009 §2.1: the token parameter is REQUIRED
	rawToken := c.PostForm("token")
	if rawToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "token parameter is required",
		})
		return
	}

	clientID, clientSecret, ok := clientCredentials(c)
	if !ok {
		c.Header("WWW-Authenticate", `Basic realm="hirematch"`)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_client",
			"error_description": "Client authentication required",
		})
		return
	}

	// token_type_hint is accepted and ignored; only access tokens exist here

	err := h.tokenService.Revoke(c.Request.Context(), clientID, clientSecret, rawToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidClient) {
			c.Header("WWW-Authenticate", `Basic realm="hirematch"`)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":             "invalid_client",
				"error_description": "Client authentication failed",
			})
			return
		}
		// Unknown, foreign and already-revoked tokens come back as nil from
		// the service, so any other error means the revocation could not be
		// processed (RFC 7009 §2.2.1)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":             "temporarily_unavailable",
			"error_description": "Revocation could not be processed, retry later",
		})
		return
	}

	// RFC 7009 §2.2: 200 whether or not a live token was revoked
	c.Status(http.StatusOK)
}

// clientCredentials extracts client authentication from HTTP Basic Auth,
// falling back to form-body parameters
func clientCredentials(c *gin.Context) (clientID, clientSecret string, ok bool) {
	clientID, clientSecret, ok = c.Request.BasicAuth()
	if !ok {
		clientID = c.PostForm("client_id")
		clientSecret = c.PostForm("client_secret")
	}
	if clientID == "" || clientSecret == "" {
		return "", "", false
	}
	return clientID, clientSecret, true
}
