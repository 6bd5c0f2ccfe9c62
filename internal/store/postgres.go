package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shorty/internal/shortener"
)

// uniqueViolation is the SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

const linkColumns = `id, short_id, redirect_url, views, account_id, created_at, updated_at`

// PostgresStore is a PostgreSQL implementation of the link and account
// repositories.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables and indexes if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Create(ctx context.Context, link *shortener.Link) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	query := `
		INSERT INTO urls (id, short_id, redirect_url, views, account_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := p.pool.QueryRow(ctx, query,
		link.ID,
		string(link.ShortID),
		link.RedirectURL,
		link.Views,
		link.AccountID,
	).Scan(&link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return shortener.ErrConflict
		}

		return err
	}

	return nil
}

func (p *PostgresStore) Exists(ctx context.Context, id shortener.ShortID) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM urls WHERE short_id = $1)`,
		string(id),
	).Scan(&exists)

	return exists, err
}

func (p *PostgresStore) IncrementViews(ctx context.Context, id shortener.ShortID) (*shortener.Link, error) {
	query := `
		UPDATE urls
		SET views = views + 1, updated_at = now()
		WHERE short_id = $1
		RETURNING ` + linkColumns

	return p.queryLink(ctx, query, string(id))
}

func (p *PostgresStore) FindOwned(ctx context.Context, id shortener.ShortID, accountID string) (*shortener.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM urls
		WHERE short_id = $1 AND account_id = $2
	`

	return p.queryLink(ctx, query, string(id), accountID)
}

func (p *PostgresStore) DeleteOwned(ctx context.Context, id shortener.ShortID, accountID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM urls WHERE short_id = $1 AND account_id = $2`,
		string(id), accountID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) ListByAccount(ctx context.Context, accountID string) ([]*shortener.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM urls
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.Link, error) {
		return scanLink(row)
	})
	if err != nil {
		return nil, err
	}

	return links, nil
}

func (p *PostgresStore) FindByAPIKey(ctx context.Context, apiKey string) (*shortener.Account, error) {
	query := `
		SELECT id, api_key, created_at, updated_at
		FROM accounts
		WHERE api_key = $1 AND deleted_at IS NULL
		LIMIT 1
	`

	var account shortener.Account

	err := p.pool.QueryRow(ctx, query, apiKey).Scan(
		&account.ID,
		&account.APIKey,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &account, nil
}

func (p *PostgresStore) Ensure(ctx context.Context, account *shortener.Account) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO accounts (id, api_key) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		account.ID, account.APIKey,
	)
	if err != nil {
		return err
	}

	return p.pool.QueryRow(ctx,
		`SELECT api_key, created_at, updated_at FROM accounts WHERE id = $1`,
		account.ID,
	).Scan(&account.APIKey, &account.CreatedAt, &account.UpdatedAt)
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Pool returns the underlying connection pool.
func (p *PostgresStore) Pool() *pgxpool.Pool {
	return p.pool
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func (p *PostgresStore) queryLink(ctx context.Context, query string, args ...any) (*shortener.Link, error) {
	link, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

func scanLink(row pgx.Row) (*shortener.Link, error) {
	var (
		link    shortener.Link
		shortID string
	)

	err := row.Scan(
		&link.ID,
		&shortID,
		&link.RedirectURL,
		&link.Views,
		&link.AccountID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.ShortID = shortener.ShortID(shortID)

	return &link, nil
}

// Compile-time checks.
var (
	_ shortener.LinkRepository    = (*PostgresStore)(nil)
	_ shortener.AccountRepository = (*PostgresStore)(nil)
)
