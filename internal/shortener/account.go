package shortener

import (
	"context"
	"strings"
)

type accountKey struct{}

// ContextWithAccount stores the authenticated account in ctx.
func ContextWithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the authenticated account, or nil.
func AccountFromContext(ctx context.Context) *Account {
	if v, ok := ctx.Value(accountKey{}).(*Account); ok {
		return v
	}

	return nil
}

// ParseBearer extracts the token from an Authorization header value.
// It returns false for a missing header, another scheme or an empty token.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}
