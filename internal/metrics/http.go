package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultError   = "error"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// If NoopMetrics, return a lightweight middleware that does nothing
	if _, ok := m.(*NoopMetrics); ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		// Fallback if unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		// Increment in-flight counter
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		// Process request
		c.Next()

		// Record metrics after request completes
		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		// Record request count
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()

		// Record request duration
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/api/admin/clients/:id") or "unknown" if no match
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordTokenIssued records an access token issuance attempt
func (m *Metrics) RecordTokenIssued(success bool, generationTime time.Duration) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.TokensIssuedTotal.WithLabelValues(result).Inc()
	m.TokenGenerationDuration.Observe(generationTime.Seconds())
}

// RecordTokenValidation records a token validation outcome
func (m *Metrics) RecordTokenValidation(result string, duration time.Duration) {
	// result: valid, invalid, expired, revoked
	m.TokenValidationTotal.WithLabelValues(result).Inc()
	m.TokenValidationDuration.Observe(duration.Seconds())
}

// RecordTokensRevoked records one or more token revocations
func (m *Metrics) RecordTokensRevoked(reason string, count int) {
	if count <= 0 {
		return
	}
	// reason: request, regenerate, deactivate, admin
	m.TokensRevokedTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordTokenSweep records expired tokens removed by the background sweeper
func (m *Metrics) RecordTokenSweep(deleted int) {
	if deleted <= 0 {
		return
	}
	m.TokensSweptTotal.Add(float64(deleted))
}

// RecordClientAuth records a client credential authentication attempt
func (m *Metrics) RecordClientAuth(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.ClientAuthTotal.WithLabelValues(result).Inc()
}

// RecordAdminLogin records a super-admin login attempt
func (m *Metrics) RecordAdminLogin(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.AdminLoginTotal.WithLabelValues(result).Inc()
}

// RecordAdminRefresh records a super-admin token refresh attempt
func (m *Metrics) RecordAdminRefresh(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.AdminRefreshTotal.WithLabelValues(result).Inc()
}

// RecordRateLimitDecision records a per-client rate limit decision
func (m *Metrics) RecordRateLimitDecision(result string) {
	// result: admitted, rejected, error
	m.RateLimitDecisionsTotal.WithLabelValues(result).Inc()
}

// RecordUsageWritten records usage records persisted by the recorder worker
func (m *Metrics) RecordUsageWritten(count int) {
	if count <= 0 {
		return
	}
	m.UsageRecordsWrittenTotal.Add(float64(count))
}

// RecordUsageDropped records usage records dropped because the buffer was full
func (m *Metrics) RecordUsageDropped(count int) {
	if count <= 0 {
		return
	}
	m.UsageRecordsDroppedTotal.Add(float64(count))
}

// SetActiveTokensCount sets the current count of active tokens (for periodic updates)
func (m *Metrics) SetActiveTokensCount(count int) {
	m.TokensActive.Set(float64(count))
}

// SetClientCounts sets the current client counts (for periodic updates)
func (m *Metrics) SetClientCounts(total, active int) {
	m.ClientsTotal.Set(float64(total))
	m.ClientsActive.Set(float64(active))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
