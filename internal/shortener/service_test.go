package shortener_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/shorty/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errDB   = errors.New("connection refused")
	account = &shortener.Account{ID: "acct1", APIKey: "key1"}
)

func newService(gen shortener.Generator) (*shortener.Service, *mockLinks, *mockAccounts) {
	links := &mockLinks{}
	accounts := &mockAccounts{}

	if gen == nil {
		gen = fixedGenerator("Gen000000001")
	}

	return shortener.NewService(links, accounts, gen), links, accounts
}

func TestService_Authenticate(t *testing.T) {
	t.Run("resolves the account", func(t *testing.T) {
		svc, _, accounts := newService(nil)
		accounts.On("FindByAPIKey", mock.Anything, "key1").Return(account, nil)

		got, err := svc.Authenticate(context.Background(), "key1")

		require.NoError(t, err)
		assert.Equal(t, "acct1", got.ID)
	})

	t.Run("empty key is unauthorized without lookup", func(t *testing.T) {
		svc, _, accounts := newService(nil)

		_, err := svc.Authenticate(context.Background(), "")

		require.ErrorIs(t, err, shortener.ErrUnauthorized)
		accounts.AssertNotCalled(t, "FindByAPIKey", mock.Anything, mock.Anything)
	})

	t.Run("unknown key is unauthorized", func(t *testing.T) {
		svc, _, accounts := newService(nil)
		accounts.On("FindByAPIKey", mock.Anything, "nope").Return(nil, shortener.ErrNotFound)

		_, err := svc.Authenticate(context.Background(), "nope")

		require.ErrorIs(t, err, shortener.ErrUnauthorized)
	})

	t.Run("store failure is not unauthorized", func(t *testing.T) {
		svc, _, accounts := newService(nil)
		accounts.On("FindByAPIKey", mock.Anything, "key1").Return(nil, errDB)

		_, err := svc.Authenticate(context.Background(), "key1")

		require.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, shortener.ErrUnauthorized)
	})
}

func TestService_Reserve(t *testing.T) {
	t.Run("free candidate is returned", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, shortener.ShortID("abc123")).Return(false, nil)

		id, err := svc.Reserve(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, shortener.ShortID("abc123"), id)
	})

	t.Run("taken candidate conflicts", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, shortener.ShortID("abc123")).Return(true, nil)

		_, err := svc.Reserve(context.Background(), "abc123")

		require.ErrorIs(t, err, shortener.ErrConflict)
		assert.NotErrorIs(t, err, shortener.ErrIDCollision)
	})

	t.Run("invalid candidate is rejected before lookup", func(t *testing.T) {
		svc, links, _ := newService(nil)

		_, err := svc.Reserve(context.Background(), "has space")

		require.ErrorIs(t, err, shortener.ErrInvalidInput)
		links.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("generates when no candidate", func(t *testing.T) {
		svc, links, _ := newService(fixedGenerator("Gen000000001"))
		links.On("Exists", mock.Anything, shortener.ShortID("Gen000000001")).Return(false, nil)

		id, err := svc.Reserve(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, shortener.ShortID("Gen000000001"), id)
	})

	t.Run("generated collision is reported once, not retried", func(t *testing.T) {
		svc, links, _ := newService(fixedGenerator("Gen000000001", "Gen000000002"))
		links.On("Exists", mock.Anything, shortener.ShortID("Gen000000001")).Return(true, nil).Once()

		_, err := svc.Reserve(context.Background(), "")

		require.ErrorIs(t, err, shortener.ErrIDCollision)
		require.ErrorIs(t, err, shortener.ErrConflict)
		links.AssertNumberOfCalls(t, "Exists", 1)
	})

	t.Run("lookup failure surfaces", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, mock.Anything).Return(false, errDB)

		_, err := svc.Reserve(context.Background(), "abc123")

		require.ErrorIs(t, err, errDB)
	})
}

func TestService_Shorten(t *testing.T) {
	t.Run("stores the link with zero views", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, shortener.ShortID("abc123")).Return(false, nil)
		links.On("Create", mock.Anything, mock.MatchedBy(func(l *shortener.Link) bool {
			return l.ShortID == "abc123" && l.Views == 0 && l.AccountID == "acct1" &&
				l.RedirectURL == "https://example.com"
		})).Return(nil)

		link, err := svc.Shorten(context.Background(), account, shortener.ShortenInput{
			URL: "https://example.com",
			ID:  "abc123",
		})

		require.NoError(t, err)
		assert.Equal(t, shortener.ShortID("abc123"), link.ShortID)
		links.AssertExpectations(t)
	})

	t.Run("url is stored as given", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		links.On("Create", mock.Anything, mock.Anything).Return(nil)

		link, err := svc.Shorten(context.Background(), account, shortener.ShortenInput{URL: "not a url"})

		require.NoError(t, err)
		assert.Equal(t, "not a url", link.RedirectURL)
	})

	t.Run("requires an account", func(t *testing.T) {
		svc, _, _ := newService(nil)

		_, err := svc.Shorten(context.Background(), nil, shortener.ShortenInput{URL: "https://example.com"})

		require.ErrorIs(t, err, shortener.ErrUnauthorized)
	})

	t.Run("requires a url", func(t *testing.T) {
		svc, _, _ := newService(nil)

		_, err := svc.Shorten(context.Background(), account, shortener.ShortenInput{})

		require.ErrorIs(t, err, shortener.ErrInvalidInput)
	})

	t.Run("store constraint wins over the pre-check", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		links.On("Create", mock.Anything, mock.Anything).Return(shortener.ErrConflict)

		_, err := svc.Shorten(context.Background(), account, shortener.ShortenInput{URL: "https://a", ID: "abc123"})
		require.ErrorIs(t, err, shortener.ErrConflict)
		assert.NotErrorIs(t, err, shortener.ErrIDCollision)

		_, err = svc.Shorten(context.Background(), account, shortener.ShortenInput{URL: "https://a"})
		require.ErrorIs(t, err, shortener.ErrIDCollision)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		links.On("Create", mock.Anything, mock.Anything).Return(errDB)

		_, err := svc.Shorten(context.Background(), account, shortener.ShortenInput{URL: "https://a"})

		require.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, shortener.ErrConflict)
	})
}

func TestService_ResolveAndBump(t *testing.T) {
	t.Run("returns the bumped link", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("IncrementViews", mock.Anything, shortener.ShortID("abc123")).
			Return(&shortener.Link{ShortID: "abc123", RedirectURL: "https://a", Views: 3}, nil)

		link, err := svc.ResolveAndBump(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, int64(3), link.Views)
	})

	t.Run("empty id is invalid", func(t *testing.T) {
		svc, links, _ := newService(nil)

		_, err := svc.ResolveAndBump(context.Background(), "")

		require.ErrorIs(t, err, shortener.ErrInvalidInput)
		links.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("IncrementViews", mock.Anything, mock.Anything).Return(nil, shortener.ErrNotFound)

		_, err := svc.ResolveAndBump(context.Background(), "missing")

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("store failure is not reported as not found", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("IncrementViews", mock.Anything, mock.Anything).Return(nil, errDB)

		_, err := svc.ResolveAndBump(context.Background(), "abc123")

		require.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestService_OwnerScoped(t *testing.T) {
	t.Run("stats of owned link", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("FindOwned", mock.Anything, shortener.ShortID("abc123"), "acct1").
			Return(&shortener.Link{ShortID: "abc123", Views: 7, AccountID: "acct1"}, nil)

		views, err := svc.Stats(context.Background(), "abc123", account)

		require.NoError(t, err)
		assert.Equal(t, int64(7), views)
	})

	t.Run("stats of foreign link is not found", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("FindOwned", mock.Anything, mock.Anything, "acct1").Return(nil, shortener.ErrNotFound)

		_, err := svc.Stats(context.Background(), "abc123", account)

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("owner-scoped calls require an account", func(t *testing.T) {
		svc, _, _ := newService(nil)

		_, err := svc.Stats(context.Background(), "abc123", nil)
		require.ErrorIs(t, err, shortener.ErrUnauthorized)

		err = svc.Delete(context.Background(), "abc123", nil)
		require.ErrorIs(t, err, shortener.ErrUnauthorized)

		_, err = svc.List(context.Background(), nil)
		require.ErrorIs(t, err, shortener.ErrUnauthorized)
	})

	t.Run("delete", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("DeleteOwned", mock.Anything, shortener.ShortID("abc123"), "acct1").Return(nil).Once()
		links.On("DeleteOwned", mock.Anything, shortener.ShortID("abc123"), "acct1").Return(shortener.ErrNotFound)

		require.NoError(t, svc.Delete(context.Background(), "abc123", account))
		require.ErrorIs(t, svc.Delete(context.Background(), "abc123", account), shortener.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		svc, links, _ := newService(nil)
		links.On("ListByAccount", mock.Anything, "acct1").Return([]*shortener.Link{{ShortID: "a"}, {ShortID: "b"}}, nil)

		got, err := svc.List(context.Background(), account)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestService_EnsureDefaultAccount(t *testing.T) {
	svc, _, accounts := newService(nil)
	accounts.On("Ensure", mock.Anything, mock.MatchedBy(func(a *shortener.Account) bool {
		return a.ID == shortener.DefaultAccountID && a.APIKey == "1234"
	})).Return(nil)

	got, err := svc.EnsureDefaultAccount(context.Background(), "1234")

	require.NoError(t, err)
	assert.Equal(t, shortener.DefaultAccountID, got.ID)
}
