package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talhabinjaved/HireMatch/internal/models"
	"github.com/talhabinjaved/HireMatch/internal/store"
)

var (
	// ErrDocumentNotFound indicates the document does not exist for this
	// client. Documents of other clients are indistinguishable from
	// missing ones.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrFilenameRequired indicates a CV upload without a filename
	ErrFilenameRequired = errors.New("filename is required")

	// ErrTitleRequired indicates a job description without a title
	ErrTitleRequired = errors.New("title is required")
)

// CreateCVRequest carries the fields for a new CV
type CreateCVRequest struct {
	Filename      string
	CandidateName string
	Content       string
}

// CreateJobRequest carries the fields for a new job description
type CreateJobRequest struct {
	Title   string
	Summary string
	Content string
}

// DocumentService manages tenant-owned CVs and job descriptions. Every
// operation is keyed by the owning client ID, so one tenant can never see
// another's documents.
type DocumentService struct {
	store *store.Store
}

// NewDocumentService creates a new document service
func NewDocumentService(s *store.Store) *DocumentService {
	return &DocumentService{store: s}
}

// CreateCV stores a CV for the given client
func (s *DocumentService) CreateCV(clientID string, req CreateCVRequest) (*models.CV, error) {
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return nil, ErrFilenameRequired
	}

	cv := &models.CV{
		ID:            uuid.New().String(),
		ClientID:      clientID,
		Filename:      filename,
		CandidateName: strings.TrimSpace(req.CandidateName),
		Content:       req.Content,
	}

	if err := s.store.CreateCV(cv); err != nil {
		return nil, fmt.Errorf("failed to save CV: %w", err)
	}
	return cv, nil
}

// GetCV fetches one of the client's CVs
func (s *DocumentService) GetCV(clientID, id string) (*models.CV, error) {
	cv, err := s.store.GetCV(clientID, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return cv, nil
}

// ListCVs returns all CVs owned by the client, newest first
func (s *DocumentService) ListCVs(clientID string) ([]models.CV, error) {
	return s.store.ListCVsByClient(clientID)
}

// DeleteCV removes one of the client's CVs
func (s *DocumentService) DeleteCV(clientID, id string) error {
	deleted, err := s.store.DeleteCV(clientID, id)
	if err != nil {
		return fmt.Errorf("failed to delete CV: %w", err)
	}
	if deleted == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// CreateJobDescription stores a job description for the given client
func (s *DocumentService) CreateJobDescription(clientID string, req CreateJobRequest) (*models.JobDescription, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	job := &models.JobDescription{
		ID:       uuid.New().String(),
		ClientID: clientID,
		Title:    title,
		Summary:  strings.TrimSpace(req.Summary),
		Content:  req.Content,
	}

	if err := s.store.CreateJobDescription(job); err != nil {
		return nil, fmt.Errorf("failed to save job description: %w", err)
	}
	return job, nil
}

// GetJobDescription fetches one of the client's job descriptions
func (s *DocumentService) GetJobDescription(clientID, id string) (*models.JobDescription, error) {
	job, err := s.store.GetJobDescription(clientID, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return job, nil
}

// ListJobDescriptions returns all job descriptions owned by the client,
// newest first
func (s *DocumentService) ListJobDescriptions(clientID string) ([]models.JobDescription, error) {
	return s.store.ListJobDescriptionsByClient(clientID)
}

// DeleteJobDescription removes one of the client's job descriptions
func (s *DocumentService) DeleteJobDescription(clientID, id string) error {
	deleted, err := s.store.DeleteJobDescription(clientID, id)
	if err != nil {
		return fmt.Errorf("failed to delete job description: %w", err)
	}
	if deleted == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
