package cache

import "errors"

var (
	// ErrCacheMiss is returned when a key is absent or has expired
	ErrCacheMiss = errors.New("cache: miss")

	// ErrCacheUnavailable wraps transport failures talking to the backend
	ErrCacheUnavailable = errors.New("cache: backend unavailable")

	// ErrInvalidValue wraps decode failures for stored values
	ErrInvalidValue = errors.New("cache: undecodable value")
)
