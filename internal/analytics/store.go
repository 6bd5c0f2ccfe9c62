package analytics

import "context"

// Store persists analytics records.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveVisit(ctx context.Context, visit *Visit) error
	SaveLinkDeleted(ctx context.Context, event *LinkDeletedEvent) error
}
