package shortener

import (
	"context"
	"errors"
	"fmt"
)

// ShortenInput is the data a client supplies to create a link.
type ShortenInput struct {
	URL string
	// ID is the requested short id. Empty means generate one.
	ID ShortID
}

// Service implements link creation, resolution and owner-scoped access.
type Service struct {
	links    LinkRepository
	accounts AccountRepository
	generate Generator
}

// NewService creates a Service.
func NewService(links LinkRepository, accounts AccountRepository, generate Generator) *Service {
	return &Service{
		links:    links,
		accounts: accounts,
		generate: generate,
	}
}

// Authenticate resolves the account holding apiKey.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*Account, error) {
	if apiKey == "" {
		return nil, ErrUnauthorized
	}

	account, err := s.accounts.FindByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}

		return nil, fmt.Errorf("resolve account: %w", err)
	}

	return account, nil
}

// Reserve resolves the short id a new link will use. A supplied candidate
// is validated and checked for use. Otherwise one id is generated and
// checked; a hit returns ErrIDCollision rather than retrying.
//
// The check is advisory: Create is the authoritative uniqueness check.
func (s *Service) Reserve(ctx context.Context, candidate ShortID) (ShortID, error) {
	conflict := ErrConflict

	id := candidate
	if id == "" {
		id = s.generate()
		conflict = ErrIDCollision
	} else if err := ValidateID(id); err != nil {
		return "", err
	}

	taken, err := s.links.Exists(ctx, id)
	if err != nil {
		return "", fmt.Errorf("check short id: %w", err)
	}

	if taken {
		return "", conflict
	}

	return id, nil
}

// Shorten creates a link owned by account. The redirect URL is stored as
// given; only its presence is checked.
func (s *Service) Shorten(ctx context.Context, account *Account, in ShortenInput) (*Link, error) {
	if account == nil {
		return nil, ErrUnauthorized
	}

	if in.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	id, err := s.Reserve(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	link := &Link{
		ShortID:     id,
		RedirectURL: in.URL,
		Views:       0,
		AccountID:   account.ID,
	}

	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, ErrConflict) {
			if in.ID == "" {
				return nil, ErrIDCollision
			}

			return nil, ErrConflict
		}

		return nil, fmt.Errorf("create link: %w", err)
	}

	return link, nil
}

// ResolveAndBump counts a view and returns the link. It is public: no
// account is involved.
func (s *Service) ResolveAndBump(ctx context.Context, id ShortID) (*Link, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	link, err := s.links.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("increment views: %w", err)
	}

	return link, nil
}

// FindOwned returns the link if account owns it. Unknown ids and links of
// other accounts both yield ErrNotFound.
func (s *Service) FindOwned(ctx context.Context, id ShortID, account *Account) (*Link, error) {
	if account == nil {
		return nil, ErrUnauthorized
	}

	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	link, err := s.links.FindOwned(ctx, id, account.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("find link: %w", err)
	}

	return link, nil
}

// Stats returns the view count of an owned link.
func (s *Service) Stats(ctx context.Context, id ShortID, account *Account) (int64, error) {
	link, err := s.FindOwned(ctx, id, account)
	if err != nil {
		return 0, err
	}

	return link.Views, nil
}

// Delete removes an owned link.
func (s *Service) Delete(ctx context.Context, id ShortID, account *Account) error {
	if account == nil {
		return ErrUnauthorized
	}

	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	if err := s.links.DeleteOwned(ctx, id, account.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete link: %w", err)
	}

	return nil
}

// List returns all links owned by account.
func (s *Service) List(ctx context.Context, account *Account) ([]*Link, error) {
	if account == nil {
		return nil, ErrUnauthorized
	}

	links, err := s.links.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	return links, nil
}

// EnsureDefaultAccount creates the shared account used when per-user
// accounts are disabled.
func (s *Service) EnsureDefaultAccount(ctx context.Context, apiKey string) (*Account, error) {
	account := &Account{ID: DefaultAccountID, APIKey: apiKey}

	if err := s.accounts.Ensure(ctx, account); err != nil {
		return nil, fmt.Errorf("ensure default account: %w", err)
	}

	return account, nil
}

// DefaultAccountID is the id of the account created by EnsureDefaultAccount.
const DefaultAccountID = "default"
