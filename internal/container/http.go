package container

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/serroba/shorty/internal/analytics"
	"github.com/serroba/shorty/internal/handlers"
	"github.com/serroba/shorty/internal/health"
	"github.com/serroba/shorty/internal/middleware"
	"github.com/serroba/shorty/internal/ratelimit"
	"github.com/serroba/shorty/internal/shortener"
	"github.com/serroba/shorty/internal/store"
	"github.com/serroba/shorty/internal/tracing"
	"go.uber.org/zap"
)

// RateLimitPackage provides the *ratelimit.PolicyLimiter and the
// *ratelimit.AuthGuard. Counters live in Redis when configured so that every
// server process shares them.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		rdb := do.MustInvoke[*RedisConn](i)
		if rdb.Client != nil {
			return store.NewRateLimitRedisStore(rdb.Client), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)
		policy := ratelimit.DefaultPolicy(opts.RateLimitGlobal, opts.RateLimitRead, opts.RateLimitWrite)

		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), policy), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.AuthGuard, error) {
		opts := do.MustInvoke[*Options](i)

		return ratelimit.NewAuthGuard(do.MustInvoke[ratelimit.Store](i), opts.AuthFailureLimit, time.Minute), nil
	})
}

// MetricsPackage provides the Prometheus registry and HTTP metrics.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		return reg, nil
	})

	do.Provide(i, func(i *do.Injector) (*middleware.Metrics, error) {
		return middleware.NewMetrics(do.MustInvoke[*prometheus.Registry](i)), nil
	})
}

// HTTPPackage provides the router and the huma API with every route
// registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		svc := do.MustInvoke[*shortener.Service](i)
		storage := do.MustInvoke[*Storage](i)
		limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)
		guard := do.MustInvoke[*ratelimit.AuthGuard](i)
		tracer := do.MustInvoke[*Tracing](i)
		metrics := do.MustInvoke[*middleware.Metrics](i)
		reg := do.MustInvoke[*prometheus.Registry](i)

		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

		api := humachi.New(router, huma.DefaultConfig("Shorty", "1.0.0"))
		api.UseMiddleware(
			middleware.Tracing(tracer.Provider, tracing.Propagator()),
			middleware.RequestMeta(api),
			metrics.Middleware(),
			middleware.Authenticate(api, svc, guard, logger),
			middleware.PolicyRateLimiter(api, limiter, ratelimit.NewOperationScopeResolver(), logger),
		)

		linkHandler := handlers.NewLinkHandler(svc, do.MustInvoke[analytics.Publishers](i), logger)
		handlers.RegisterRoutes(api, linkHandler)
		health.RegisterRoutes(api, health.NewHandler(storage.checks))

		return api, nil
	})
}
