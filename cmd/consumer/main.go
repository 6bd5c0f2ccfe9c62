package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shorty/internal/container"
	"github.com/serroba/shorty/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	opts := &container.Options{
		Store:         getEnv("SERVICE_STORE", container.StoreMemory),
		DatabaseURL:   getEnv("SERVICE_DATABASE_URL", ""),
		SQLitePath:    getEnv("SERVICE_SQLITE_PATH", "shorty.db"),
		RedisAddr:     getEnv("SERVICE_REDIS_ADDR", "localhost:6379"),
		ConsumerGroup: getEnv("SERVICE_CONSUMER_GROUP", "shorty-analytics"),
		LogFormat:     getEnv("SERVICE_LOG_FORMAT", "console"),
		LogLevel:      getEnv("SERVICE_LOG_LEVEL", "info"),
		LogDir:        getEnv("SERVICE_LOG_DIR", ""),
		OTLPEndpoint:  getEnv("SERVICE_OTLP_ENDPOINT", ""),
		ServiceName:   getEnv("SERVICE_SERVICE_NAME", "shorty-consumer"),
		Environment:   getEnv("SERVICE_ENVIRONMENT", "development"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.TracingPackage(injector)
	container.RedisPackage(injector)
	container.StorePackage(injector)
	container.MessagingPackage(injector)
	container.AnalyticsPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	ttl, err := strconv.Atoi(getEnv("SERVICE_ACCOUNT_CACHE_TTL", "300"))
	if err != nil {
		logger.Fatal("invalid SERVICE_ACCOUNT_CACHE_TTL", zap.Error(err))
	}

	opts.AccountCacheTTL = ttl

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
