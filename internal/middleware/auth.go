package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shorty/internal/handlers"
	"github.com/serroba/shorty/internal/ratelimit"
	"github.com/serroba/shorty/internal/shortener"
	"go.uber.org/zap"
)

// Authenticator resolves an API key to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*shortener.Account, error)
}

// Authenticate resolves the bearer token of operations that declare the
// handlers.BearerAuth security scheme and stores the account in the
// request context. Other operations pass through untouched.
//
// Failed attempts are counted per client IP in guard; a client over the
// limit gets 429 before its key is looked up. A nil guard disables this.
func Authenticate(
	api huma.API,
	auth Authenticator,
	guard *ratelimit.AuthGuard,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresBearer(ctx.Operation()) {
			next(ctx)

			return
		}

		ip := "ip:" + clientIP(ctx)

		blocked, err := guard.Blocked(ctx.Context(), ip)
		if err != nil {
			logger.Error("auth failure limit check failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "Internal Server Error")

			return
		}

		if blocked {
			logger.Warn("too many failed authentication attempts",
				zap.String("path", operationPath(ctx)),
				zap.String("client_ip", clientIP(ctx)),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "too many failed authentication attempts")

			return
		}

		token, ok := shortener.ParseBearer(ctx.Header("Authorization"))
		if !ok {
			reject(api, ctx, guard, ip, logger)

			return
		}

		account, err := auth.Authenticate(ctx.Context(), token)
		if err != nil {
			if errors.Is(err, shortener.ErrUnauthorized) {
				reject(api, ctx, guard, ip, logger)

				return
			}

			logger.Error("account lookup failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "Internal Server Error")

			return
		}

		next(huma.WithContext(ctx, shortener.ContextWithAccount(ctx.Context(), account)))
	}
}

// reject answers 401 and counts the failure against the client.
func reject(api huma.API, ctx huma.Context, guard *ratelimit.AuthGuard, ip string, logger *zap.Logger) {
	if err := guard.Fail(ctx.Context(), ip); err != nil {
		logger.Error("failed to record authentication failure", zap.Error(err))
	}

	_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Unauthorized")
}

func requiresBearer(op *huma.Operation) bool {
	if op == nil {
		return false
	}

	for _, requirement := range op.Security {
		if _, ok := requirement[handlers.BearerAuth]; ok {
			return true
		}
	}

	return false
}
