package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/serroba/shorty/internal/middleware"

// Tracing starts a server span per request, continuing the trace found in
// the incoming headers. Spans are named after the route template.
func Tracing(
	provider trace.TracerProvider,
	propagator propagation.TextMapPropagator,
) func(ctx huma.Context, next func(huma.Context)) {
	tracer := provider.Tracer(tracerName)

	return func(ctx huma.Context, next func(huma.Context)) {
		header := http.Header{}
		ctx.EachHeader(func(name, value string) {
			header.Add(name, value)
		})

		parent := propagator.Extract(ctx.Context(), propagation.HeaderCarrier(header))
		route := operationPath(ctx)

		spanCtx, span := tracer.Start(parent, ctx.Method()+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", ctx.Method()),
				attribute.String("http.route", route),
				attribute.String("client.address", clientIP(ctx)),
			),
		)
		defer span.End()

		next(huma.WithContext(ctx, spanCtx))

		status := ctx.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))

		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
