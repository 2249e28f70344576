package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a unique index,
	// e.g. a token hash collision or a reused admin username.
	ErrDuplicateKey = errors.New("duplicate key")
)
