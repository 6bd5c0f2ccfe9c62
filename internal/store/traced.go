package store

import (
	"context"
	"errors"

	"github.com/serroba/shorty/internal/shortener"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/serroba/shorty/internal/store"

// TracedLinks wraps a LinkRepository with one client span per call.
// ErrNotFound and ErrConflict are outcomes, not span errors.
type TracedLinks struct {
	next   shortener.LinkRepository
	tracer trace.Tracer
}

// NewTracedLinks creates a tracing decorator around next.
func NewTracedLinks(next shortener.LinkRepository, provider trace.TracerProvider) *TracedLinks {
	return &TracedLinks{next: next, tracer: provider.Tracer(tracerName)}
}

func (t *TracedLinks) Create(ctx context.Context, link *shortener.Link) error {
	ctx, span := t.start(ctx, "Create", link.ShortID)
	defer span.End()

	return t.finish(span, t.next.Create(ctx, link))
}

func (t *TracedLinks) Exists(ctx context.Context, id shortener.ShortID) (bool, error) {
	ctx, span := t.start(ctx, "Exists", id)
	defer span.End()

	exists, err := t.next.Exists(ctx, id)

	return exists, t.finish(span, err)
}

func (t *TracedLinks) IncrementViews(ctx context.Context, id shortener.ShortID) (*shortener.Link, error) {
	ctx, span := t.start(ctx, "IncrementViews", id)
	defer span.End()

	link, err := t.next.IncrementViews(ctx, id)

	return link, t.finish(span, err)
}

func (t *TracedLinks) FindOwned(ctx context.Context, id shortener.ShortID, accountID string) (*shortener.Link, error) {
	ctx, span := t.start(ctx, "FindOwned", id)
	defer span.End()

	link, err := t.next.FindOwned(ctx, id, accountID)

	return link, t.finish(span, err)
}

func (t *TracedLinks) DeleteOwned(ctx context.Context, id shortener.ShortID, accountID string) error {
	ctx, span := t.start(ctx, "DeleteOwned", id)
	defer span.End()

	return t.finish(span, t.next.DeleteOwned(ctx, id, accountID))
}

func (t *TracedLinks) ListByAccount(ctx context.Context, accountID string) ([]*shortener.Link, error) {
	ctx, span := t.tracer.Start(ctx, "links.ListByAccount", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	links, err := t.next.ListByAccount(ctx, accountID)
	if err == nil {
		span.SetAttributes(attribute.Int("links.count", len(links)))
	}

	return links, t.finish(span, err)
}

func (t *TracedLinks) start(ctx context.Context, op string, id shortener.ShortID) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "links."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("link.short_id", string(id))),
	)
}

func (t *TracedLinks) finish(span trace.Span, err error) error {
	switch {
	case err == nil:
	case errors.Is(err, shortener.ErrNotFound):
		span.SetAttributes(attribute.String("link.outcome", "not_found"))
	case errors.Is(err, shortener.ErrConflict):
		span.SetAttributes(attribute.String("link.outcome", "conflict"))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

var _ shortener.LinkRepository = (*TracedLinks)(nil)
