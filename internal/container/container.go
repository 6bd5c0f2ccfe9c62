// Package container wires the application with samber/do.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shorty/internal/health"
	"github.com/serroba/shorty/internal/logging"
	"github.com/serroba/shorty/internal/messaging"
	"github.com/serroba/shorty/internal/shortener"
	"github.com/serroba/shorty/internal/store"
	"github.com/serroba/shorty/internal/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// LoggerPackage provides the shared *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return logging.New(logging.Config{
			Format: opts.LogFormat,
			Level:  opts.LogLevel,
			Dir:    opts.LogDir,
		})
	})
}

// Tracing owns the tracer provider.
type Tracing struct {
	Provider *sdktrace.TracerProvider
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return t.Provider.Shutdown(ctx)
}

// TracingPackage provides *Tracing.
func TracingPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Tracing, error) {
		opts := do.MustInvoke[*Options](i)

		provider, err := tracing.NewProvider(context.Background(), tracing.Config{
			Endpoint:    opts.OTLPEndpoint,
			ServiceName: opts.ServiceName,
			Environment: opts.Environment,
		})
		if err != nil {
			return nil, err
		}

		return &Tracing{Provider: provider}, nil
	})
}

// RedisConn holds the optional Redis client. Client is nil when no address
// is configured.
type RedisConn struct {
	Client *redis.Client
}

// Shutdown closes the client.
func (c *RedisConn) Shutdown() error {
	if c.Client == nil {
		return nil
	}

	return c.Client.Close()
}

// RedisPackage provides *RedisConn.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisConn, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr == "" {
			return &RedisConn{}, nil
		}

		return &RedisConn{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// Storage is the selected link and account backend.
type Storage struct {
	Links    shortener.LinkRepository
	Accounts shortener.AccountRepository
	// Pool is set for the postgres backend only.
	Pool *pgxpool.Pool

	checks   map[string]health.Checker
	shutdown func() error
}

// Shutdown releases the backend.
func (s *Storage) Shutdown() error {
	if s.shutdown == nil {
		return nil
	}

	return s.shutdown()
}

// StorePackage provides *Storage for Options.Store. Link calls are traced.
// With Redis configured and a positive AccountCacheTTL, account lookups go
// through AccountCache.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Storage, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*RedisConn](i)
		tracer := do.MustInvoke[*Tracing](i)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		storage, err := openStorage(ctx, opts, tracer.Provider)
		if err != nil {
			return nil, err
		}

		storage.Links = store.NewTracedLinks(storage.Links, tracer.Provider)

		if rdb.Client != nil {
			storage.checks["redis"] = health.NewRedisChecker(rdb.Client)

			if opts.AccountCacheTTL > 0 {
				ttl := time.Duration(opts.AccountCacheTTL) * time.Second
				storage.Accounts = store.NewAccountCache(storage.Accounts, rdb.Client, ttl)
			}
		}

		logger.Info("store ready", zap.String("backend", opts.Store), zap.Bool("redis", rdb.Client != nil))

		return storage, nil
	})
}

func openStorage(ctx context.Context, opts *Options, provider *sdktrace.TracerProvider) (*Storage, error) {
	switch opts.Store {
	case StorePostgres:
		cfg, err := pgxpool.ParseConfig(opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}

		cfg.ConnConfig.Tracer = otelpgx.NewTracer(otelpgx.WithTracerProvider(provider))

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()

			return nil, err
		}

		return &Storage{
			Links:    pg,
			Accounts: pg,
			Pool:     pool,
			checks:   map[string]health.Checker{"postgres": pg},
			shutdown: pg.Shutdown,
		}, nil
	case StoreSQLite:
		lite, err := store.OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}

		return &Storage{
			Links:    lite,
			Accounts: lite,
			checks:   map[string]health.Checker{"sqlite": lite},
			shutdown: lite.Shutdown,
		}, nil
	case StoreMemory:
		mem := store.NewMemoryStore()

		return &Storage{Links: mem, Accounts: mem, checks: map[string]health.Checker{}}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", opts.Store)
}

// ServicePackage provides the *shortener.Service.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		storage := do.MustInvoke[*Storage](i)

		generate, err := shortener.NewGenerator()
		if err != nil {
			return nil, err
		}

		return shortener.NewService(storage.Links, storage.Accounts, generate), nil
	})
}

// MessagingPackage provides *messaging.PublisherGroup and the
// message.Subscriber consumers read from. Both use Redis Streams, or a
// shared in-process pub/sub when Redis is not configured.
func MessagingPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return messaging.NewInProcessPubSub(messaging.NewZapLogger(logger)), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		rdb := do.MustInvoke[*RedisConn](i)
		if rdb.Client == nil {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		logger := do.MustInvoke[*zap.Logger](i)

		pub, err := messaging.NewRedisStreamPublisher(rdb.Client, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(pub), nil
	})

	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		rdb := do.MustInvoke[*RedisConn](i)
		if rdb.Client == nil {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return messaging.NewRedisStreamSubscriber(rdb.Client, opts.ConsumerGroup, messaging.NewZapLogger(logger))
	})
}
