package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// It is only correct for a single server process.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	now     func() time.Time
	calls   int
}

// slidingWindow holds the request times of one key. Each key is always
// recorded with the same window.
type slidingWindow struct {
	size  time.Duration
	times []time.Time
}

// sweepEvery is the number of Record calls between sweeps of idle keys.
const sweepEvery = 1024

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, ok := s.windows[key]
	if !ok {
		w = &slidingWindow{}
		s.windows[key] = w
	}

	w.size = max(w.size, window)
	w.times = append(prune(w.times, now.Add(-window)), now)

	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now)
	}

	return int64(len(w.times)), nil
}

func (s *RateLimitMemoryStore) Count(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		return 0, nil
	}

	w.times = prune(w.times, s.now().Add(-window))

	return int64(len(w.times)), nil
}

// sweep drops keys whose newest request fell out of their own window.
func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if len(w.times) == 0 || !w.times[len(w.times)-1].After(now.Add(-w.size)) {
			delete(s.windows, key)
		}
	}
}

func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	valid := make([]time.Time, 0, len(timestamps)+1)

	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	return valid
}
