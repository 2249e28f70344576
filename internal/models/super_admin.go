package models

import (
	"time"
)

type SuperAdmin struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name used by SuperAdmin to `super_admins`
func (SuperAdmin) TableName() string {
	return "super_admins"
}
