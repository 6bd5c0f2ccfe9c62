package ratelimit

import (
	"context"
	"time"
)

// AuthGuard limits failed authentication attempts per client so API keys
// cannot be guessed at the request rate. A blocked client is rejected
// before its key is looked up.
type AuthGuard struct {
	store Store
	limit LimitConfig
}

// NewAuthGuard allows max failures per window. A non-positive max turns
// the guard off.
func NewAuthGuard(store Store, max int64, window time.Duration) *AuthGuard {
	return &AuthGuard{store: store, limit: LimitConfig{Window: window, Max: max}}
}

// Blocked reports whether clientKey used up its failed attempts.
func (g *AuthGuard) Blocked(ctx context.Context, clientKey string) (bool, error) {
	if g == nil || g.limit.Max <= 0 {
		return false, nil
	}

	count, err := g.store.Count(ctx, g.key(clientKey), g.limit.Window)
	if err != nil {
		return false, err
	}

	return count >= g.limit.Max, nil
}

// Fail records a failed attempt of clientKey.
func (g *AuthGuard) Fail(ctx context.Context, clientKey string) error {
	if g == nil || g.limit.Max <= 0 {
		return nil
	}

	_, err := g.store.Record(ctx, g.key(clientKey), g.limit.Window)

	return err
}

// Limit returns the configured failure limit.
func (g *AuthGuard) Limit() LimitConfig {
	return g.limit
}

func (g *AuthGuard) key(clientKey string) string {
	return Key(clientKey, "authfail", g.limit)
}
