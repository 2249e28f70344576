package models

import (
	"time"
)

// Access token status values
const (
	TokenStatusActive  = "active"
	TokenStatusRevoked = "revoked"
)

type AccessToken struct {
	ID         string `gorm:"primaryKey"`
	TokenHash  string `gorm:"uniqueIndex;not null"`
	RawToken   string `gorm:"-"` // In-memory only; never persisted to DB
	TokenType  string `gorm:"not null;default:'Bearer'"`
	Status     string `gorm:"not null;default:'active';index"` // 'active' or 'revoked'
	ClientID   string `gorm:"not null;index"`
	Scopes     string `gorm:"not null"` // space-separated scopes granted at issuance
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastUsedAt *time.Time // last successful validation
}

// IsExpired reports whether the token lifetime has elapsed. A token whose
// expiry equals the current instant is already expired.
func (t *AccessToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt reports expiry relative to the given instant.
func (t *AccessToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive returns true if token status is 'active'
func (t *AccessToken) IsActive() bool {
	return t.Status == TokenStatusActive
}

// IsRevoked returns true if token status is 'revoked'
func (t *AccessToken) IsRevoked() bool {
	return t.Status == TokenStatusRevoked
}
