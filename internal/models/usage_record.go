package models

import (
	"time"
)

// Request outcomes recorded for usage analytics
const (
	OutcomeAdmitted    = "admitted"
	OutcomeDeniedAuth  = "denied_auth"
	OutcomeDeniedScope = "denied_scope"
	OutcomeDeniedRate  = "denied_rate"
)

// UsageRecord is one authenticated (or rejected) API request. Records are
// append-only; the analytics read path aggregates over them.
type UsageRecord struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	ClientID       string `gorm:"index;not null"`
	Endpoint       string `gorm:"not null"` // route pattern, not the raw path
	Method         string `gorm:"not null"`
	StatusCode     int    `gorm:"not null"`
	Outcome        string `gorm:"not null;index"`
	ResponseTimeMS float64
	IP             string
	CreatedAt      time.Time `gorm:"index"`
}

// TableName overrides the table name used by UsageRecord to `usage_records`
func (UsageRecord) TableName() string {
	return "usage_records"
}
