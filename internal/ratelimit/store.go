package ratelimit

import (
	"context"
	"time"
)

// Store keeps sliding-window request counters.
type Store interface {
	// Record counts one request under key and returns how many requests
	// key saw within the trailing window, this one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)

	// Count returns how many requests key saw within the trailing window
	// without recording one.
	Count(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
