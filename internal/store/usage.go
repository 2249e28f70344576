package store

import (
	"time"

	"github.com/talhabinjaved/HireMatch/internal/models"
)

// UsageTotals aggregates request outcomes over a reporting window.
type UsageTotals struct {
	TotalRequests int64   `json:"total_requests"`
	Admitted      int64   `json:"admitted"`
	DeniedAuth    int64   `json:"denied_auth"`
	DeniedScope   int64   `json:"denied_scope"`
	DeniedRate    int64   `json:"denied_rate"`
	AvgResponseMS float64 `json:"avg_response_ms"`
}

// EndpointCount is request volume for one endpoint/method pair.
type EndpointCount struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
	Count    int64  `json:"count"`
}

// ClientRequestCount is request volume for one client.
type ClientRequestCount struct {
	ClientID string `json:"client_id"`
	Count    int64  `json:"count"`
}

const usageTotalsSelect = `
	COUNT(*) as total_requests,
	COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0) as admitted,
	COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0) as denied_auth,
	COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0) as denied_scope,
	COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0) as denied_rate,
	COALESCE(AVG(response_time_ms), 0) as avg_response_ms`

// CreateUsageRecords appends a batch of usage records.
func (s *Store) CreateUsageRecords(records []models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Create(&records).Error
}

// UsageTotalsByClient aggregates one client's requests since the given time.
func (s *Store) UsageTotalsByClient(clientID string, since time.Time) (*UsageTotals, error) {
	var totals UsageTotals
	err := s.db.Model(&models.UsageRecord{}).
		Select(usageTotalsSelect,
			models.OutcomeAdmitted, models.OutcomeDeniedAuth,
			models.OutcomeDeniedScope, models.OutcomeDeniedRate).
		Where("client_id = ? AND created_at >= ?", clientID, since).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// UsageTotalsSystem aggregates all requests since the given time.
func (s *Store) UsageTotalsSystem(since time.Time) (*UsageTotals, error) {
	var totals UsageTotals
	err := s.db.Model(&models.UsageRecord{}).
		Select(usageTotalsSelect,
			models.OutcomeAdmitted, models.OutcomeDeniedAuth,
			models.OutcomeDeniedScope, models.OutcomeDeniedRate).
		Where("created_at >= ?", since).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// EndpointCountsByClient breaks one client's requests down per endpoint.
func (s *Store) EndpointCountsByClient(clientID string, since time.Time) ([]EndpointCount, error) {
	var rows []EndpointCount
	err := s.db.Model(&models.UsageRecord{}).
		Select("endpoint, method, COUNT(*) as count").
		Where("client_id = ? AND created_at >= ?", clientID, since).
		Group("endpoint, method").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// TopClientsByRequests returns the busiest clients since the given time.
// Unattributed records (failed authentication) are not clients and are left
// out.
func (s *Store) TopClientsByRequests(since time.Time, limit int) ([]ClientRequestCount, error) {
	var rows []ClientRequestCount
	err := s.db.Model(&models.UsageRecord{}).
		Select("client_id, COUNT(*) as count").
		Where("created_at >= ? AND client_id <> ''", since).
		Group("client_id").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DeleteUsageRecordsBefore trims the append-only usage log. Returns rows
// deleted.
func (s *Store) DeleteUsageRecordsBefore(cutoff time.Time) (int64, error) {
	res := s.db.Where("created_at < ?", cutoff).Delete(&models.UsageRecord{})
	return res.RowsAffected, res.Error
}
