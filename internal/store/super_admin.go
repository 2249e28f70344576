package store

import (
	"github.com/talhabinjaved/HireMatch/internal/models"
)

// Super-admin operations

func (s *Store) CreateSuperAdmin(admin *models.SuperAdmin) error {
	return translate(s.db.Create(admin).Error)
}

func (s *Store) GetSuperAdminByUsername(username string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *Store) GetSuperAdminByID(id string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *Store) UpdateSuperAdmin(admin *models.SuperAdmin) error {
	return translate(s.db.Save(admin).Error)
}

func (s *Store) CountSuperAdmins() (int64, error) {
	var count int64
	err := s.db.Model(&models.SuperAdmin{}).Count(&count).Error
	return count, err
}
