package store

import (
	"github.com/talhabinjaved/HireMatch/internal/models"
)

// Tenant document operations. Every query is keyed by the owning client;
// a record belonging to another client is indistinguishable from a missing
// one.

func (s *Store) CreateCV(cv *models.CV) error {
	return translate(s.db.Create(cv).Error)
}

func (s *Store) GetCV(clientID, id string) (*models.CV, error) {
	var cv models.CV
	if err := s.db.Where("client_id = ? AND id = ?", clientID, id).First(&cv).Error; err != nil {
		return nil, translate(err)
	}
	return &cv, nil
}

func (s *Store) ListCVsByClient(clientID string) ([]models.CV, error) {
	var cvs []models.CV
	if err := s.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&cvs).Error; err != nil {
		return nil, err
	}
	return cvs, nil
}

func (s *Store) DeleteCV(clientID, id string) (int64, error) {
	res := s.db.Where("client_id = ? AND id = ?", clientID, id).Delete(&models.CV{})
	return res.RowsAffected, res.Error
}

func (s *Store) CountCVsByClient(clientID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.CV{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

func (s *Store) CreateJobDescription(job *models.JobDescription) error {
	return translate(s.db.Create(job).Error)
}

func (s *Store) GetJobDescription(clientID, id string) (*models.JobDescription, error) {
	var job models.JobDescription
	if err := s.db.Where("client_id = ? AND id = ?", clientID, id).First(&job).Error; err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (s *Store) ListJobDescriptionsByClient(clientID string) ([]models.JobDescription, error) {
	var jobs []models.JobDescription
	if err := s.db.Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) DeleteJobDescription(clientID, id string) (int64, error) {
	res := s.db.Where("client_id = ? AND id = ?", clientID, id).Delete(&models.JobDescription{})
	return res.RowsAffected, res.Error
}

func (s *Store) CountJobDescriptionsByClient(clientID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.JobDescription{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}
