package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/services"
)

// UsageRecording captures the outcome of each tenant API request for the
// analytics pipeline. Recording happens after the response is written and
// never blocks the request. Super-admin traffic is not tenant usage and is
// skipped.
func UsageRecording(usage *services.UsageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		clientID := ""
		if principal, ok := GetPrincipal(c); ok {
			clientPrincipal, ok := principal.(services.ClientPrincipal)
			if !ok {
				return
			}
			clientID = clientPrincipal.Client.ClientID
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		status := c.Writer.Status()
		usage.Record(c.Request.Context(), services.UsageEntry{
			ClientID:       clientID,
			Endpoint:       endpoint,
			Method:         c.Request.Method,
			StatusCode:     status,
			Outcome:        classifyOutcome(status),
			ResponseTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
			IP:             c.ClientIP(),
		})
	}
}

func classifyOutcome(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return models.OutcomeDeniedAuth
	case http.StatusForbidden:
		return models.OutcomeDeniedScope
	case http.StatusTooManyRequests:
		return models.OutcomeDeniedRate
	case http.StatusServiceUnavailable:
		// Only the rate limiter's fail-closed path produces a 503 on
		// tenant routes
		return models.OutcomeDeniedRate
	default:
		return models.OutcomeAdmitted
	}
}
