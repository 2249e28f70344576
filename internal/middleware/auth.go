package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talhabinjaved/HireMatch/internal/services"
)

const principalKey = "principal"

// GetPrincipal returns the principal resolved by Authenticate, if any
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(services.Principal)
	return principal, ok
}

// Authenticate resolves the Authorization header to a principal and stores
// it in the request context. Requests without a usable bearer credential are
// rejected with an RFC 6750 error response.
func Authenticate(auth *services.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c)
		if bearer == "" {
			unauthorized(c, "invalid_request", "Bearer token required")
			return
		}

		principal, err := auth.Resolve(c.Request.Context(), bearer)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				unauthorized(c, "invalid_token", "The access token has expired")
			case errors.Is(err, services.ErrTokenRevoked):
				unauthorized(c, "invalid_token", "The access token has been revoked")
			default:
				unauthorized(c, "invalid_token", "The access token is invalid")
			}
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireScope guards a tenant-data endpoint. Must run after Authenticate.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			unauthorized(c, "invalid_request", "Bearer token required")
			return
		}

		if err := services.CheckScope(principal, scope); err != nil {
			if errors.Is(err, services.ErrAdminNotTenant) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":             "access_denied",
					"error_description": "Super admin tokens cannot access tenant data",
				})
				return
			}
			c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer error="insufficient_scope", scope=%q`, scope))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":             "insufficient_scope",
				"error_description": fmt.Sprintf("The %q scope is required", scope),
			})
			return
		}

		c.Next()
	}
}

// RequireAdmin guards a management endpoint. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			unauthorized(c, "invalid_request", "Bearer token required")
			return
		}

		if err := services.CheckAdmin(principal); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":             "access_denied",
				"error_description": "Super admin credentials required",
			})
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(c *gin.Context, code, description string) {
	c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer realm="hirematch", error=%q`, code))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":             code,
		"error_description": description,
	})
}
