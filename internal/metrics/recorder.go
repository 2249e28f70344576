package metrics

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Token Operations
	RecordTokenIssued(success bool, generationTime time.Duration)
	RecordTokenValidation(result string, duration time.Duration)
	RecordTokensRevoked(reason string, count int)
	RecordTokenSweep(deleted int)

	// Authentication
	RecordClientAuth(success bool)
	RecordAdminLogin(success bool)
	RecordAdminRefresh(success bool)

	// Rate Limiting
	RecordRateLimitDecision(result string)

	// Usage Recording
	RecordUsageWritten(count int)
	RecordUsageDropped(count int)

	// Gauge Setters (for periodic updates)
	SetActiveTokensCount(count int)
	SetClientCounts(total, active int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
