//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shorty/internal/analytics"
	analyticsstore "github.com/serroba/shorty/internal/analytics/store"
	"github.com/serroba/shorty/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// databaseURL returns DATABASE_URL when set, otherwise starts a disposable
// Postgres container.
func databaseURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("shorty"),
		postgres.WithUsername("shorty"),
		postgres.WithPassword("shorty"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("PostgreSQL container not available: %v", err)
	}

	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return url
}

func newPostgresStore(t *testing.T) *store.PostgresStore {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL(t))
	require.NoError(t, err)

	s := store.NewPostgresStore(pool)
	t.Cleanup(func() { _ = s.Shutdown() })

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStoreIntegration(t *testing.T) {
	s := newPostgresStore(t)

	// The migration is idempotent.
	require.NoError(t, s.Migrate(context.Background()))

	runRepositoryContract(t, s, "it"+uuid.NewString()[:8])
}

func TestPostgresAnalyticsStoreIntegration(t *testing.T) {
	ctx := context.Background()
	s := newPostgresStore(t)
	events := analyticsstore.NewPostgres(s.Pool())

	shortID := "ev" + uuid.NewString()[:8]

	visit := &analytics.Visit{Device: analytics.DeviceDesktop, Browser: "Chrome", OS: "Linux"}
	visit.ShortID = shortID
	visit.VisitedAt = time.Now()

	require.NoError(t, events.SaveLinkCreated(ctx, &analytics.LinkCreatedEvent{ShortID: shortID, CreatedAt: time.Now()}))
	require.NoError(t, events.SaveVisit(ctx, visit))
	require.NoError(t, events.SaveLinkDeleted(ctx, &analytics.LinkDeletedEvent{ShortID: shortID, DeletedAt: time.Now()}))

	var count int

	err := s.Pool().QueryRow(ctx, `SELECT count(*) FROM link_events WHERE short_id = $1`, shortID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var device string

	err = s.Pool().QueryRow(ctx,
		`SELECT device FROM link_events WHERE short_id = $1 AND kind = 'visited'`, shortID,
	).Scan(&device)
	require.NoError(t, err)
	assert.Equal(t, analytics.DeviceDesktop, device)
}
