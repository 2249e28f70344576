package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/util"
)

// usageFlushThreshold is the batch size at which buffered records are
// written without waiting for the ticker
const usageFlushThreshold = 50

// UsageEntry carries the outcome of one API request into the recorder
type UsageEntry struct {
	ClientID       string
	Endpoint       string
	Method         string
	StatusCode     int
	Outcome        string
	ResponseTimeMS float64
	IP             string
}

// UsageService records per-request usage asynchronously and serves the
// analytics read path. Recording never blocks a request: entries go through
// a buffered channel and are batch-written by a background worker.
type UsageService struct {
	store   *store.Store
	enabled bool
	metrics metrics.Recorder

	recordChan  chan models.UsageRecord
	batchBuffer []models.UsageRecord
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	wg         sync.WaitGroup
	shutdownCh chan struct{}
}

// NewUsageService creates the usage recorder and starts its worker when
// recording is enabled
func NewUsageService(s *store.Store, enabled bool, bufferSize int, m metrics.Recorder) *UsageService {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	svc := &UsageService{
		store:       s,
		enabled:     enabled,
		metrics:     m,
		recordChan:  make(chan models.UsageRecord, bufferSize),
		batchBuffer: make([]models.UsageRecord, 0, usageFlushThreshold),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		svc.batchTicker = time.NewTicker(time.Second)
		svc.wg.Add(1)
		go svc.worker()
		log.Printf("Usage recording started with buffer size %d", bufferSize)
	} else {
		log.Println("Usage recording is disabled")
	}

	return svc
}

// Record queues one usage entry. If the buffer is full the entry is dropped
// and counted; the request is never delayed.
func (s *UsageService) Record(ctx context.Context, entry UsageEntry) {
	if !s.enabled {
		return
	}

	if entry.IP == "" {
		entry.IP = util.GetIPFromContext(ctx)
	}

	record := models.UsageRecord{
		ClientID:       entry.ClientID,
		Endpoint:       entry.Endpoint,
		Method:         entry.Method,
		StatusCode:     entry.StatusCode,
		Outcome:        entry.Outcome,
		ResponseTimeMS: entry.ResponseTimeMS,
		IP:             entry.IP,
		CreatedAt:      time.Now(),
	}

	select {
	case s.recordChan <- record:
	default:
		log.Printf("WARNING: Usage buffer full, dropping record for %s %s", entry.Method, entry.Endpoint)
		s.metrics.RecordUsageDropped(1)
	}
}

func (s *UsageService) worker() {
	defer s.wg.Done()

	for {
		select {
		case record := <-s.recordChan:
			s.addToBatch(record)
		case <-s.batchTicker.C:
			s.flushBatch()
		case <-s.shutdownCh:
			// Drain whatever is still queued, then flush and exit
			for {
				select {
				case record := <-s.recordChan:
					s.addToBatch(record)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

func (s *UsageService) addToBatch(record models.UsageRecord) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, record)
	if len(s.batchBuffer) >= usageFlushThreshold {
		s.flushBatchUnsafe()
	}
}

func (s *UsageService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe writes the buffered records. Caller must hold batchMutex.
func (s *UsageService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]models.UsageRecord, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	if err := s.store.CreateUsageRecords(toWrite); err != nil {
		log.Printf("ERROR: Failed to write %d usage records: %v", len(toWrite), err)
		s.metrics.RecordUsageDropped(len(toWrite))
		return
	}
	s.metrics.RecordUsageWritten(len(toWrite))
}

// Shutdown stops the worker and flushes any buffered records, bounded by ctx
func (s *UsageService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.batchTicker.Stop()
	close(s.shutdownCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Usage recorder shut down cleanly")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("usage recorder shutdown timed out: %w", ctx.Err())
	}
}

// ClientUsageSummary aggregates one client's traffic and holdings over a
// reporting window
type ClientUsageSummary struct {
	ClientID     string                `json:"client_id"`
	WindowStart  time.Time             `json:"window_start"`
	Totals       store.UsageTotals     `json:"totals"`
	TopEndpoints []store.EndpointCount `json:"top_endpoints"`
	ActiveTokens int64                 `json:"active_tokens"`
	TokensIssued int64                 `json:"tokens_issued"`
	CVCount      int64                 `json:"cv_count"`
	JobCount     int64                 `json:"job_count"`
}

// SystemUsageOverview aggregates traffic across all clients
type SystemUsageOverview struct {
	WindowStart   time.Time                  `json:"window_start"`
	Totals        store.UsageTotals          `json:"totals"`
	TopClients    []store.ClientRequestCount `json:"top_clients"`
	TotalClients  int64                      `json:"total_clients"`
	ActiveClients int64                      `json:"active_clients"`
	ActiveTokens  int64                      `json:"active_tokens"`
}

// ClientSummary builds the per-client analytics view since the given time
func (s *UsageService) ClientSummary(clientID string, since time.Time) (*ClientUsageSummary, error) {
	totals, err := s.store.UsageTotalsByClient(clientID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage for client: %w", err)
	}

	endpoints, err := s.store.EndpointCountsByClient(clientID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate endpoints for client: %w", err)
	}

	now := time.Now()
	activeTokens, err := s.store.CountActiveTokensByClientID(clientID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count active tokens: %w", err)
	}

	issued, err := s.store.CountTokensIssuedSince(clientID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count issued tokens: %w", err)
	}

	cvCount, err := s.store.CountCVsByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count CVs: %w", err)
	}

	jobCount, err := s.store.CountJobDescriptionsByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count job descriptions: %w", err)
	}

	return &ClientUsageSummary{
		ClientID:     clientID,
		WindowStart:  since,
		Totals:       *totals,
		TopEndpoints: endpoints,
		ActiveTokens: activeTokens,
		TokensIssued: issued,
		CVCount:      cvCount,
		JobCount:     jobCount,
	}, nil
}

// SystemOverview builds the platform-wide analytics view since the given time
func (s *UsageService) SystemOverview(since time.Time) (*SystemUsageOverview, error) {
	totals, err := s.store.UsageTotalsSystem(since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate system usage: %w", err)
	}

	topClients, err := s.store.TopClientsByRequests(since, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to rank clients: %w", err)
	}

	totalClients, activeClients, err := s.store.CountClients()
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	activeTokens, err := s.store.CountActiveTokens(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to count active tokens: %w", err)
	}

	return &SystemUsageOverview{
		WindowStart:   since,
		Totals:        *totals,
		TopClients:    topClients,
		TotalClients:  totalClients,
		ActiveClients: activeClients,
		ActiveTokens:  activeTokens,
	}, nil
}

// CleanupOldRecords deletes usage records older than the retention period
func (s *UsageService) CleanupOldRecords(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	deleted, err := s.store.DeleteUsageRecordsBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old usage records: %w", err)
	}
	if deleted > 0 {
		log.Printf("[Usage] Deleted %d usage records older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}
