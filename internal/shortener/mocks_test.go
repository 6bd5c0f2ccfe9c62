package shortener_test

import (
	"context"

	"github.com/serroba/shorty/internal/shortener"
	"github.com/stretchr/testify/mock"
)

type mockLinks struct {
	mock.Mock
}

func (m *mockLinks) Create(ctx context.Context, link *shortener.Link) error {
	return m.Called(ctx, link).Error(0)
}

func (m *mockLinks) Exists(ctx context.Context, id shortener.ShortID) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}

func (m *mockLinks) IncrementViews(ctx context.Context, id shortener.ShortID) (*shortener.Link, error) {
	args := m.Called(ctx, id)
	link, _ := args.Get(0).(*shortener.Link)

	return link, args.Error(1)
}

func (m *mockLinks) FindOwned(ctx context.Context, id shortener.ShortID, accountID string) (*shortener.Link, error) {
	args := m.Called(ctx, id, accountID)
	link, _ := args.Get(0).(*shortener.Link)

	return link, args.Error(1)
}

func (m *mockLinks) DeleteOwned(ctx context.Context, id shortener.ShortID, accountID string) error {
	return m.Called(ctx, id, accountID).Error(0)
}

func (m *mockLinks) ListByAccount(ctx context.Context, accountID string) ([]*shortener.Link, error) {
	args := m.Called(ctx, accountID)
	links, _ := args.Get(0).([]*shortener.Link)

	return links, args.Error(1)
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) FindByAPIKey(ctx context.Context, apiKey string) (*shortener.Account, error) {
	args := m.Called(ctx, apiKey)
	account, _ := args.Get(0).(*shortener.Account)

	return account, args.Error(1)
}

func (m *mockAccounts) Ensure(ctx context.Context, account *shortener.Account) error {
	return m.Called(ctx, account).Error(0)
}

func fixedGenerator(ids ...shortener.ShortID) shortener.Generator {
	i := 0

	return func() shortener.ShortID {
		id := ids[i%len(ids)]
		i++

		return id
	}
}
