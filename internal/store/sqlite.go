package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shorty/internal/shortener"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore is a SQLite implementation of the link and account
// repositories for single-node deployments.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, link *shortener.Link) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	now := s.now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO urls (id, short_id, redirect_url, views, account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID.String(),
		string(link.ShortID),
		link.RedirectURL,
		link.Views,
		link.AccountID,
		now.UnixMicro(),
		now.UnixMicro(),
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return shortener.ErrConflict
		}

		return fmt.Errorf("insert link: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, id shortener.ShortID) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM urls WHERE short_id = ?)`,
		string(id),
	).Scan(&exists)

	return exists, err
}

func (s *SQLiteStore) IncrementViews(ctx context.Context, id shortener.ShortID) (*shortener.Link, error) {
	query := `
		UPDATE urls
		SET views = views + 1, updated_at = ?
		WHERE short_id = ?
		RETURNING ` + linkColumns

	return s.queryLink(ctx, query, s.now().UTC().UnixMicro(), string(id))
}

func (s *SQLiteStore) FindOwned(ctx context.Context, id shortener.ShortID, accountID string) (*shortener.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM urls WHERE short_id = ? AND account_id = ?`

	return s.queryLink(ctx, query, string(id), accountID)
}

func (s *SQLiteStore) DeleteOwned(ctx context.Context, id shortener.ShortID, accountID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM urls WHERE short_id = ? AND account_id = ?`,
		string(id), accountID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) ListByAccount(ctx context.Context, accountID string) ([]*shortener.Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM urls WHERE account_id = ? ORDER BY created_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*shortener.Link, 0)

	for rows.Next() {
		link, err := scanSQLiteLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (s *SQLiteStore) FindByAPIKey(ctx context.Context, apiKey string) (*shortener.Account, error) {
	var (
		account          shortener.Account
		created, updated int64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, api_key, created_at, updated_at
		FROM accounts
		WHERE api_key = ? AND deleted_at IS NULL
		LIMIT 1`,
		apiKey,
	).Scan(&account.ID, &account.APIKey, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	account.CreatedAt = time.UnixMicro(created).UTC()
	account.UpdatedAt = time.UnixMicro(updated).UTC()

	return &account, nil
}

func (s *SQLiteStore) Ensure(ctx context.Context, account *shortener.Account) error {
	now := s.now().UTC().UnixMicro()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, api_key, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`,
		account.ID, account.APIKey, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	var created, updated int64

	err = s.db.QueryRowContext(ctx,
		`SELECT api_key, created_at, updated_at FROM accounts WHERE id = ?`,
		account.ID,
	).Scan(&account.APIKey, &created, &updated)
	if err != nil {
		return err
	}

	account.CreatedAt = time.UnixMicro(created).UTC()
	account.UpdatedAt = time.UnixMicro(updated).UTC()

	return nil
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryLink(ctx context.Context, query string, args ...any) (*shortener.Link, error) {
	link, err := scanSQLiteLink(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return link, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLink(row rowScanner) (*shortener.Link, error) {
	var (
		link             shortener.Link
		id, shortID      string
		created, updated int64
	)

	if err := row.Scan(&id, &shortID, &link.RedirectURL, &link.Views, &link.AccountID, &created, &updated); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse link id: %w", err)
	}

	link.ID = parsed
	link.ShortID = shortener.ShortID(shortID)
	link.CreatedAt = time.UnixMicro(created).UTC()
	link.UpdatedAt = time.UnixMicro(updated).UTC()

	return &link, nil
}

func isSQLiteUnique(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended result codes disabled
		return strings.Contains(sqliteErr.Error(), "UNIQUE")
	}

	return false
}

// Compile-time checks.
var (
	_ shortener.LinkRepository    = (*SQLiteStore)(nil)
	_ shortener.AccountRepository = (*SQLiteStore)(nil)
)
