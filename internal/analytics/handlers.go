package analytics

import (
	"context"
	"fmt"

	"github.com/serroba/shorty/internal/messaging"
)

// Handlers turns link events into stored analytics records.
type Handlers struct {
	store  Store
	parser *UserAgentParser
}

// NewHandlers creates the analytics event handlers.
func NewHandlers(store Store, parser *UserAgentParser) *Handlers {
	return &Handlers{store: store, parser: parser}
}

// LinkCreated stores a creation record.
func (h *Handlers) LinkCreated(ctx context.Context, event *LinkCreatedEvent) error {
	if err := h.store.SaveLinkCreated(ctx, event); err != nil {
		return fmt.Errorf("save link created %s: %w", event.ShortID, err)
	}

	return nil
}

// LinkVisited enriches the visit with device details and stores it.
func (h *Handlers) LinkVisited(ctx context.Context, event *LinkVisitedEvent) error {
	info := h.parser.Parse(event.UserAgent)

	visit := &Visit{
		LinkVisitedEvent: *event,
		Device:           info.Device,
		Browser:          info.Browser,
		OS:               info.OS,
	}

	if err := h.store.SaveVisit(ctx, visit); err != nil {
		return fmt.Errorf("save visit %s: %w", event.ShortID, err)
	}

	return nil
}

// LinkDeleted stores a deletion record.
func (h *Handlers) LinkDeleted(ctx context.Context, event *LinkDeletedEvent) error {
	if err := h.store.SaveLinkDeleted(ctx, event); err != nil {
		return fmt.Errorf("save link deleted %s: %w", event.ShortID, err)
	}

	return nil
}

// Publishers bundles the typed publish functions for link events.
type Publishers struct {
	Created messaging.Publish[LinkCreatedEvent]
	Visited messaging.Publish[LinkVisitedEvent]
	Deleted messaging.Publish[LinkDeletedEvent]
}
