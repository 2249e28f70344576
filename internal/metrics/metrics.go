package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Token Metrics
	TokensIssuedTotal       *prometheus.CounterVec
	TokenValidationTotal    *prometheus.CounterVec
	TokensRevokedTotal      *prometheus.CounterVec
	TokensSweptTotal        prometheus.Counter
	TokensActive            prometheus.Gauge
	TokenGenerationDuration prometheus.Histogram
	TokenValidationDuration prometheus.Histogram

	// Authentication Metrics
	ClientAuthTotal   *prometheus.CounterVec
	AdminLoginTotal   *prometheus.CounterVec
	AdminRefreshTotal *prometheus.CounterVec

	// Rate Limit Metrics
	RateLimitDecisionsTotal *prometheus.CounterVec

	// Usage Recording Metrics
	UsageRecordsWrittenTotal prometheus.Counter
	UsageRecordsDroppedTotal prometheus.Counter

	// Client Metrics
	ClientsTotal  prometheus.Gauge
	ClientsActive prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		// Token Metrics
		TokensIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_tokens_issued_total",
				Help: "Total number of access tokens issued",
			},
			[]string{"result"}, // success, error
		),
		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_token_validation_total",
				Help: "Total number of token validations",
			},
			[]string{"result"}, // valid, invalid, expired, revoked
		),
		TokensRevokedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth_tokens_revoked_total",
				Help: "Total number of tokens revoked",
			},
			[]string{"reason"}, // request, regenerate, deactivate, admin
		),
		TokensSweptTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth_tokens_swept_total",
				Help: "Total number of expired tokens removed by the sweeper",
			},
		),
		TokensActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "oauth_tokens_active",
				Help: "Current number of active access tokens",
			},
		),
		TokenGenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oauth_token_generation_duration_seconds",
				Help:    "Time taken to issue tokens",
				Buckets: prometheus.DefBuckets,
			},
		),
		TokenValidationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oauth_token_validation_duration_seconds",
				Help:    "Time taken to validate tokens",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Authentication Metrics
		ClientAuthTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_client_attempts_total",
				Help: "Total number of client credential authentications",
			},
			[]string{"result"}, // success, failure
		),
		AdminLoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_admin_login_total",
				Help: "Total number of super-admin login attempts",
			},
			[]string{"result"}, // success, failure
		),
		AdminRefreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_admin_refresh_total",
				Help: "Total number of super-admin token refresh attempts",
			},
			[]string{"result"}, // success, failure
		),

		// Rate Limit Metrics
		RateLimitDecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_decisions_total",
				Help: "Total number of per-client rate limit decisions",
			},
			[]string{"result"}, // admitted, rejected, error
		),

		// Usage Recording Metrics
		UsageRecordsWrittenTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "usage_records_written_total",
				Help: "Total number of usage records persisted",
			},
		),
		UsageRecordsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "usage_records_dropped_total",
				Help: "Total number of usage records dropped due to backpressure",
			},
		),

		// Client Metrics
		ClientsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "oauth_clients_total",
				Help: "Current number of registered clients",
			},
		),
		ClientsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "oauth_clients_active",
				Help: "Current number of active clients",
			},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		// Database Query Metrics
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"}, // count_active_tokens, count_clients
		),
	}

	return m
}
