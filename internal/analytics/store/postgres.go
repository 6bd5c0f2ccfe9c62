package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shorty/internal/analytics"
)

// Postgres appends analytics records to the link_events table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres analytics store. The link_events table is
// created by the link store migration.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const insertEvent = `
	INSERT INTO link_events (kind, short_id, account_id, occurred_at, client_ip, user_agent, referrer, device, browser, os)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (p *Postgres) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	return p.insert(ctx, "created", event.ShortID, event.AccountID, event.CreatedAt,
		event.ClientIP, event.UserAgent, "", "", "", "")
}

func (p *Postgres) SaveVisit(ctx context.Context, visit *analytics.Visit) error {
	return p.insert(ctx, "visited", visit.ShortID, visit.AccountID, visit.VisitedAt,
		visit.ClientIP, visit.UserAgent, visit.Referrer, visit.Device, visit.Browser, visit.OS)
}

func (p *Postgres) SaveLinkDeleted(ctx context.Context, event *analytics.LinkDeletedEvent) error {
	return p.insert(ctx, "deleted", event.ShortID, event.AccountID, event.DeletedAt,
		"", "", "", "", "", "")
}

func (p *Postgres) insert(
	ctx context.Context,
	kind, shortID, accountID string,
	at time.Time,
	clientIP, userAgent, referrer, device, browser, os string,
) error {
	if _, err := p.pool.Exec(ctx, insertEvent,
		kind, shortID, accountID, at, clientIP, userAgent, referrer, device, browser, os,
	); err != nil {
		return fmt.Errorf("insert %s event: %w", kind, err)
	}

	return nil
}

var _ analytics.Store = (*Postgres)(nil)
