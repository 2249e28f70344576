package models

import (
	"time"
)

// CV is a tenant-owned candidate document. Content is stored as plain text;
// parsing, embedding, and match scoring happen outside this service.
type CV struct {
	ID            string `gorm:"primaryKey"`
	ClientID      string `gorm:"index;not null"`
	Filename      string `gorm:"not null"`
	CandidateName string
	Content       string `gorm:"type:text"`
	CreatedAt     time.Time
}

// TableName overrides the table name used by CV to `cvs`
func (CV) TableName() string {
	return "cvs"
}

// JobDescription is a tenant-owned job posting.
type JobDescription struct {
	ID        string `gorm:"primaryKey"`
	ClientID  string `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Summary   string
	Content   string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName overrides the table name used by JobDescription to `job_descriptions`
func (JobDescription) TableName() string {
	return "job_descriptions"
}
