package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/serroba/shorty/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repository interface {
	shortener.LinkRepository
	shortener.AccountRepository
}

// runRepositoryContract checks the behaviour every link store must share.
// prefix keeps ids unique when the backing database outlives the test.
func runRepositoryContract(t *testing.T, repo repository, prefix string) {
	t.Helper()

	ctx := context.Background()
	owner := &shortener.Account{ID: prefix + "owner", APIKey: prefix + "key-owner"}
	other := &shortener.Account{ID: prefix + "other", APIKey: prefix + "key-other"}

	require.NoError(t, repo.Ensure(ctx, owner))
	require.NoError(t, repo.Ensure(ctx, other))

	id := func(s string) shortener.ShortID { return shortener.ShortID(prefix + s) }

	newLink := func(s string, account *shortener.Account) *shortener.Link {
		return &shortener.Link{ShortID: id(s), RedirectURL: "https://example.com/" + s, AccountID: account.ID}
	}

	t.Run("create assigns identity and timestamps", func(t *testing.T) {
		link := newLink("create1", owner)

		require.NoError(t, repo.Create(ctx, link))

		assert.NotEqual(t, uuid.Nil, link.ID)
		assert.False(t, link.CreatedAt.IsZero())

		exists, err := repo.Exists(ctx, id("create1"))
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate short id is a conflict", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newLink("dup1", owner)))

		err := repo.Create(ctx, newLink("dup1", other))

		require.ErrorIs(t, err, shortener.ErrConflict)
	})

	t.Run("unknown id does not exist", func(t *testing.T) {
		exists, err := repo.Exists(ctx, id("nothere"))

		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("increment returns the updated link", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newLink("inc1", owner)))

		first, err := repo.IncrementViews(ctx, id("inc1"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.Views)
		assert.Equal(t, "https://example.com/inc1", first.RedirectURL)

		second, err := repo.IncrementViews(ctx, id("inc1"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), second.Views)
	})

	t.Run("increment of unknown id is not found", func(t *testing.T) {
		_, err := repo.IncrementViews(ctx, id("nothere"))

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newLink("race1", owner)))

		const n = 50

		var wg sync.WaitGroup

		errs := make(chan error, n)

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				if _, err := repo.IncrementViews(ctx, id("race1")); err != nil {
					errs <- err
				}
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		link, err := repo.FindOwned(ctx, id("race1"), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(n), link.Views)
	})

	t.Run("find owned is scoped to the owner", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newLink("own1", owner)))

		link, err := repo.FindOwned(ctx, id("own1"), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, link.AccountID)

		_, err = repo.FindOwned(ctx, id("own1"), other.ID)
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("delete owned", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newLink("del1", owner)))

		err := repo.DeleteOwned(ctx, id("del1"), other.ID)
		require.ErrorIs(t, err, shortener.ErrNotFound)

		require.NoError(t, repo.DeleteOwned(ctx, id("del1"), owner.ID))

		_, err = repo.IncrementViews(ctx, id("del1"))
		require.ErrorIs(t, err, shortener.ErrNotFound)

		err = repo.DeleteOwned(ctx, id("del1"), owner.ID)
		require.ErrorIs(t, err, shortener.ErrNotFound)

		// A deleted id can be reused.
		require.NoError(t, repo.Create(ctx, newLink("del1", other)))
	})

	t.Run("list by account", func(t *testing.T) {
		lister := &shortener.Account{ID: prefix + "lister", APIKey: prefix + "key-lister"}
		require.NoError(t, repo.Ensure(ctx, lister))

		require.NoError(t, repo.Create(ctx, newLink("list1", lister)))
		require.NoError(t, repo.Create(ctx, newLink("list2", lister)))

		links, err := repo.ListByAccount(ctx, lister.ID)
		require.NoError(t, err)
		require.Len(t, links, 2)

		ids := []shortener.ShortID{links[0].ShortID, links[1].ShortID}
		assert.ElementsMatch(t, []shortener.ShortID{id("list1"), id("list2")}, ids)
		assert.False(t, links[0].CreatedAt.Before(links[1].CreatedAt), "newest first")

		empty, err := repo.ListByAccount(ctx, prefix+"nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("accounts by api key", func(t *testing.T) {
		got, err := repo.FindByAPIKey(ctx, owner.APIKey)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.ID)

		_, err = repo.FindByAPIKey(ctx, prefix+"missing")
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("ensure keeps the existing account", func(t *testing.T) {
		again := &shortener.Account{ID: owner.ID, APIKey: prefix + "rotated"}

		require.NoError(t, repo.Ensure(ctx, again))

		assert.Equal(t, owner.APIKey, again.APIKey)
	})
}
