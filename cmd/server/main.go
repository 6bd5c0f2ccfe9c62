package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shorty/internal/container"
	"github.com/serroba/shorty/internal/messaging"
	"github.com/serroba/shorty/internal/shortener"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.TracingPackage(injector)
	container.RedisPackage(injector)
	container.StorePackage(injector)
	container.ServicePackage(injector)
	container.RateLimitPackage(injector)
	container.MessagingPackage(injector)
	container.AnalyticsPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.MetricsPackage(injector)
	container.HTTPPackage(injector)
}

// bootstrap creates the default account and, without Redis, starts the
// analytics consumers in this process.
func bootstrap(ctx context.Context, injector *do.Injector, options *container.Options, logger *zap.Logger) error {
	if !options.AccountsEnabled {
		svc := do.MustInvoke[*shortener.Service](injector)

		account, err := svc.EnsureDefaultAccount(ctx, options.AdminKey)
		if err != nil {
			return err
		}

		logger.Info("default account ready", zap.String("account_id", account.ID))
	}

	if options.RedisAddr == "" {
		group := do.MustInvoke[*messaging.ConsumerGroup](injector)
		if err := group.Start(ctx); err != nil {
			return fmt.Errorf("start in-process consumers: %w", err)
		}
	}

	return nil
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			if err := bootstrap(ctx, injector, options, logger); err != nil {
				logger.Fatal("bootstrap failed", zap.Error(err))
			}

			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("store", options.Store),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if server != nil {
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
			_ = logger.Sync()
		})
	})

	cli.Run()
}
