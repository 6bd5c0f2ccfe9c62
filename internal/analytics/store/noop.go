package store

import (
	"context"

	"github.com/serroba/shorty/internal/analytics"
	"go.uber.org/zap"
)

// Noop logs analytics records instead of persisting them.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	n.logger.Info("link created",
		zap.String("short_id", event.ShortID),
		zap.String("account_id", event.AccountID),
		zap.Bool("custom_id", event.CustomID),
		zap.Time("created_at", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveVisit(_ context.Context, visit *analytics.Visit) error {
	n.logger.Info("link visited",
		zap.String("short_id", visit.ShortID),
		zap.Int64("views", visit.Views),
		zap.String("device", visit.Device),
		zap.String("browser", visit.Browser),
		zap.String("os", visit.OS),
		zap.String("referrer", visit.Referrer),
	)

	return nil
}

func (n *Noop) SaveLinkDeleted(_ context.Context, event *analytics.LinkDeletedEvent) error {
	n.logger.Info("link deleted",
		zap.String("short_id", event.ShortID),
		zap.String("account_id", event.AccountID),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
