package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shorty/internal/shortener"
)

// MemoryStore is an in-memory implementation of the link and account
// repositories.
type MemoryStore struct {
	mu       sync.RWMutex
	links    map[shortener.ShortID]*shortener.Link
	accounts map[string]*shortener.Account // id -> account
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:    make(map[shortener.ShortID]*shortener.Link),
		accounts: make(map[string]*shortener.Account),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.ShortID]; ok {
		return shortener.ErrConflict
	}

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}

	now := m.now()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}

	link.UpdatedAt = now

	stored := *link
	m.links[link.ShortID] = &stored

	return nil
}

func (m *MemoryStore) Exists(_ context.Context, id shortener.ShortID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[id]

	return ok, nil
}

func (m *MemoryStore) IncrementViews(_ context.Context, id shortener.ShortID) (*shortener.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	link.Views++
	link.UpdatedAt = m.now()

	out := *link

	return &out, nil
}

func (m *MemoryStore) FindOwned(_ context.Context, id shortener.ShortID, accountID string) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok || link.AccountID != accountID {
		return nil, shortener.ErrNotFound
	}

	out := *link

	return &out, nil
}

func (m *MemoryStore) DeleteOwned(_ context.Context, id shortener.ShortID, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.AccountID != accountID {
		return shortener.ErrNotFound
	}

	delete(m.links, id)

	return nil
}

func (m *MemoryStore) ListByAccount(_ context.Context, accountID string) ([]*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*shortener.Link, 0)

	for _, link := range m.links {
		if link.AccountID == accountID {
			out := *link
			links = append(links, &out)
		}
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (m *MemoryStore) FindByAPIKey(_ context.Context, apiKey string) (*shortener.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, account := range m.accounts {
		if account.APIKey == apiKey {
			out := *account

			return &out, nil
		}
	}

	return nil, shortener.ErrNotFound
}

func (m *MemoryStore) Ensure(_ context.Context, account *shortener.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.accounts[account.ID]; ok {
		*account = *existing

		return nil
	}

	now := m.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	m.accounts[account.ID] = &stored

	return nil
}

// Compile-time checks.
var (
	_ shortener.LinkRepository    = (*MemoryStore)(nil)
	_ shortener.AccountRepository = (*MemoryStore)(nil)
)
