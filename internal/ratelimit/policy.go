package ratelimit

import "time"

// LimitConfig allows at most Max requests per sliding Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits applied to them. A request must stay
// under every limit of every scope it resolves to.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// PolicyBuilder assembles a Policy.
type PolicyBuilder struct {
	policy *Policy
}

// NewPolicyBuilder starts an empty policy.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{policy: &Policy{Limits: make(map[Scope][]LimitConfig)}}
}

// AddLimit adds a limit to scope. Non-positive maxima are ignored.
func (b *PolicyBuilder) AddLimit(scope Scope, maxRequests int64, window time.Duration) *PolicyBuilder {
	if maxRequests > 0 && window > 0 {
		b.policy.Limits[scope] = append(b.policy.Limits[scope], LimitConfig{Window: window, Max: maxRequests})
	}

	return b
}

// Build returns the assembled policy.
func (b *PolicyBuilder) Build() *Policy {
	return b.policy
}

// DefaultPolicy returns a policy with one per-minute limit per scope.
// Zero values leave a scope unlimited.
func DefaultPolicy(globalPerMinute, readPerMinute, writePerMinute int64) *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, globalPerMinute, time.Minute).
		AddLimit(ScopeRead, readPerMinute, time.Minute).
		AddLimit(ScopeWrite, writePerMinute, time.Minute).
		Build()
}
