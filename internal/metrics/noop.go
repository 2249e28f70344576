package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

// Token Operations - noop implementations
func (n *NoopMetrics) RecordTokenIssued(success bool, generationTime time.Duration) {}
func (n *NoopMetrics) RecordTokenValidation(result string, duration time.Duration)  {}
func (n *NoopMetrics) RecordTokensRevoked(reason string, count int)                 {}
func (n *NoopMetrics) RecordTokenSweep(deleted int)                                 {}

// Authentication - noop implementations
func (n *NoopMetrics) RecordClientAuth(success bool)   {}
func (n *NoopMetrics) RecordAdminLogin(success bool)   {}
func (n *NoopMetrics) RecordAdminRefresh(success bool) {}

// Rate Limiting - noop implementations
func (n *NoopMetrics) RecordRateLimitDecision(result string) {}

// Usage Recording - noop implementations
func (n *NoopMetrics) RecordUsageWritten(count int) {}
func (n *NoopMetrics) RecordUsageDropped(count int) {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetActiveTokensCount(count int)    {}
func (n *NoopMetrics) SetClientCounts(total, active int) {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
