package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey string

const ipContextKey contextKey = "client_ip"

// IPMiddleware extracts client IP and stores it in the context
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		c.Set(string(ipContextKey), c.ClientIP())
		c.Next()
	}
}

// SetIPContext returns a context carrying the client IP address.
func SetIPContext(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, ipContextKey, ip)
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	// Try to extract from Gin context first
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}

	// Try to get from context value (set by middleware)
	if ip, ok := ctx.Value(ipContextKey).(string); ok {
		return ip
	}

	return ""
}
