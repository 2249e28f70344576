// Package ratelimit admits or rejects requests against per-client hourly
// ceilings. Counters live in a pluggable store keyed by (client, hour
// bucket); admission is an atomic increment-then-compare, so two requests
// racing for the last slot can never both win.
//
// Window boundaries are fixed UTC hours. A request that straddles a rollover
// may land in either the old or the new bucket depending on when its
// increment executes; the slack is bounded by a single request and is
// accepted rather than locked away.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrStoreUnavailable reports that the counter store could not answer.
// Admission fails closed on it.
var ErrStoreUnavailable = errors.New("rate limit store unavailable")

// bucketTTL keeps the current and the immediately preceding window alive,
// nothing older.
const bucketTTL = 2 * time.Hour

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when allowed
	ResetAt    time.Time     // start of the next window
}

// Store is an atomic counter arena keyed by (client, window bucket).
type Store interface {
	// Incr atomically increments the counter for key and returns the new
	// value. ttl bounds the bucket's lifetime.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Decr undoes one Incr. Used when rejected requests are configured not
	// to consume window budget.
	Decr(ctx context.Context, key string) (int64, error)
	Close() error
}

// Limiter makes admission decisions for client requests.
type Limiter struct {
	store         Store
	countRejected bool
	now           func() time.Time
}

// New creates a limiter over the given store. When countRejected is true,
// rejected attempts consume window budget like admitted ones.
func New(store Store, countRejected bool) *Limiter {
	return &Limiter{
		store:         store,
		countRejected: countRejected,
		now:           time.Now,
	}
}

// Admit records one request attempt for clientID against ceiling and
// reports whether it may proceed. A store failure rejects the request
// (fail closed) and returns ErrStoreUnavailable.
func (l *Limiter) Admit(ctx context.Context, clientID string, ceiling int) (Result, error) {
	now := l.now().UTC()
	windowStart := now.Truncate(time.Hour)
	resetAt := windowStart.Add(time.Hour)
	key := fmt.Sprintf("%s:%d", clientID, windowStart.Unix())

	denied := Result{
		Allowed:    false,
		Limit:      ceiling,
		Remaining:  0,
		RetryAfter: resetAt.Sub(now),
		ResetAt:    resetAt,
	}

	count, err := l.store.Incr(ctx, key, bucketTTL)
	if err != nil {
		return denied, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if count > int64(ceiling) {
		if !l.countRejected {
			// Hand the slot back; this attempt should leave no trace.
			_, _ = l.store.Decr(ctx, key)
		}
		return denied, nil
	}

	return Result{
		Allowed:   true,
		Limit:     ceiling,
		Remaining: ceiling - int(count),
		ResetAt:   resetAt,
	}, nil
}
