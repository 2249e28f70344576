package store

import (
	"time"

	"github.com/talhabinjaved/HireMatch/internal/models"
)

// Client operations

func (s *Store) CreateClient(client *models.Client) error {
	return translate(s.db.Create(client).Error)
}

func (s *Store) GetClient(clientID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("client_id = ?", clientID).First(&client).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// ListClients returns clients newest first, paginated.
func (s *Store) ListClients(params PaginationParams) ([]models.Client, PaginationResult, error) {
	var total int64
	if err := s.db.Model(&models.Client{}).Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var clients []models.Client
	err := s.db.Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&clients).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return clients, CalculatePagination(total, params.Page, params.PageSize), nil
}

func (s *Store) UpdateClient(client *models.Client) error {
	return translate(s.db.Save(client).Error)
}

// DeleteClient removes the client row. Token revocation is the caller's job.
func (s *Store) DeleteClient(clientID string) error {
	return translate(s.db.Where("client_id = ?", clientID).Delete(&models.Client{}).Error)
}

// TouchClientLastUsed stamps the client's last token issuance. Best effort;
// the caller ignores failures.
func (s *Store) TouchClientLastUsed(clientID string, when time.Time) error {
	return s.db.Model(&models.Client{}).
		Where("client_id = ?", clientID).
		Update("last_used_at", when).Error
}

func (s *Store) CountClients() (total, active int64, err error) {
	if err = s.db.Model(&models.Client{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&models.Client{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
