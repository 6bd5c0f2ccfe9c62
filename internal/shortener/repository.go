package shortener

import "context"

// LinkRepository persists links. Implementations must enforce short id
// uniqueness at the storage layer and report violations as ErrConflict.
type LinkRepository interface {
	// Create inserts a new link. ID, CreatedAt and UpdatedAt are filled in
	// by the store when zero.
	Create(ctx context.Context, link *Link) error

	// Exists reports whether a live link uses the short id.
	Exists(ctx context.Context, id ShortID) (bool, error)

	// IncrementViews adds one to the view counter in a single store
	// operation and returns the updated link. Returns ErrNotFound without
	// writing when the id is unknown.
	IncrementViews(ctx context.Context, id ShortID) (*Link, error)

	// FindOwned returns the link only if it belongs to accountID.
	FindOwned(ctx context.Context, id ShortID, accountID string) (*Link, error)

	// DeleteOwned removes the link only if it belongs to accountID.
	DeleteOwned(ctx context.Context, id ShortID, accountID string) error

	// ListByAccount returns the account's links, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]*Link, error)
}

// AccountRepository resolves accounts by API key.
type AccountRepository interface {
	// FindByAPIKey returns ErrNotFound when no account holds the key.
	FindByAPIKey(ctx context.Context, apiKey string) (*Account, error)

	// Ensure creates the account if no account with its ID exists. On
	// return account holds the stored row.
	Ensure(ctx context.Context, account *Account) error
}
