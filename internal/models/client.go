package models

import (
	"time"
)

type Client struct {
	ClientID         string `gorm:"primaryKey"`
	SecretHash       string `gorm:"not null"` // bcrypt hashed secret
	Name             string `gorm:"not null"`
	Description      string `gorm:"type:text"`
	Scopes           string `gorm:"not null;default:'read'"` // space-separated scopes
	RateLimitPerHour int    `gorm:"not null;default:1000"`
	IsActive         bool   `gorm:"not null;default:true"`
	CreatedBy        string     // super-admin username who created this client
	LastUsedAt       *time.Time // last successful token issuance
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the table name used by Client to `clients`
func (Client) TableName() string {
	return "clients"
}
