package shortener

import (
	"time"

	"github.com/google/uuid"
)

// ShortID is the caller-facing identifier a link is reached by.
type ShortID string

// Link maps a short id to its redirect target.
type Link struct {
	ID          uuid.UUID
	ShortID     ShortID
	RedirectURL string
	Views       int64
	AccountID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account owns links and authenticates with its API key.
type Account struct {
	ID        string
	APIKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
