package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/serroba/shorty/internal/analytics"
	"github.com/serroba/shorty/internal/shortener"
	"go.uber.org/zap"
)

// LinkService is the domain surface the handlers need.
type LinkService interface {
	Shorten(ctx context.Context, account *shortener.Account, in shortener.ShortenInput) (*shortener.Link, error)
	ResolveAndBump(ctx context.Context, id shortener.ShortID) (*shortener.Link, error)
	Stats(ctx context.Context, id shortener.ShortID, account *shortener.Account) (int64, error)
	Delete(ctx context.Context, id shortener.ShortID, account *shortener.Account) error
	List(ctx context.Context, account *shortener.Account) ([]*shortener.Link, error)
}

// LinkHandler serves the link endpoints.
type LinkHandler struct {
	links   LinkService
	publish analytics.Publishers
	logger  *zap.Logger
	now     func() time.Time
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(links LinkService, publish analytics.Publishers, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		links:   links,
		publish: publish,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *LinkHandler) CreateShortURL(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	account := shortener.AccountFromContext(ctx)
	requested := shortener.ShortID(req.Body.ID)

	link, err := h.links.Shorten(ctx, account, shortener.ShortenInput{URL: req.Body.URL, ID: requested})
	if err != nil {
		return nil, h.toHTTPError(err, "shorten", requested)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		ShortID:     string(link.ShortID),
		RedirectURL: link.RedirectURL,
		AccountID:   link.AccountID,
		CustomID:    requested != "",
		CreatedAt:   link.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publish.Created(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("short_id", event.ShortID),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Body.ID = string(link.ShortID)

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	id := shortener.ShortID(req.ID)

	link, err := h.links.ResolveAndBump(ctx, id)
	if err != nil {
		return nil, h.toHTTPError(err, "redirect", id)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkVisitedEvent{
		ShortID:   string(link.ShortID),
		AccountID: link.AccountID,
		Views:     link.Views,
		VisitedAt: h.now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	if err := h.publish.Visited(ctx, event); err != nil {
		h.logger.Error("failed to publish visit event",
			zap.String("short_id", event.ShortID),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.RedirectURL,
	}, nil
}

func (h *LinkHandler) Stats(ctx context.Context, req *LinkRequest) (*StatsResponse, error) {
	id := shortener.ShortID(req.ID)

	views, err := h.links.Stats(ctx, id, shortener.AccountFromContext(ctx))
	if err != nil {
		return nil, h.toHTTPError(err, "stats", id)
	}

	resp := &StatsResponse{}
	resp.Body.Views = views

	return resp, nil
}

func (h *LinkHandler) Delete(ctx context.Context, req *LinkRequest) (*DeleteResponse, error) {
	id := shortener.ShortID(req.ID)
	account := shortener.AccountFromContext(ctx)

	if err := h.links.Delete(ctx, id, account); err != nil {
		return nil, h.toHTTPError(err, "delete", id)
	}

	event := &analytics.LinkDeletedEvent{
		ShortID:   req.ID,
		AccountID: account.ID,
		DeletedAt: h.now(),
	}

	if err := h.publish.Deleted(ctx, event); err != nil {
		h.logger.Error("failed to publish delete event",
			zap.String("short_id", event.ShortID),
			zap.Error(err),
		)
	}

	return &DeleteResponse{ContentType: "text/plain; charset=utf-8", Body: []byte("OK")}, nil
}

func (h *LinkHandler) List(ctx context.Context, _ *struct{}) (*ListResponse, error) {
	links, err := h.links.List(ctx, shortener.AccountFromContext(ctx))
	if err != nil {
		return nil, h.toHTTPError(err, "list", "")
	}

	resp := &ListResponse{}
	resp.Body.Links = make([]LinkSummary, 0, len(links))

	for _, link := range links {
		resp.Body.Links = append(resp.Body.Links, LinkSummary{
			ID:        string(link.ShortID),
			URL:       link.RedirectURL,
			Views:     link.Views,
			CreatedAt: link.CreatedAt,
		})
	}

	return resp, nil
}
