package analytics

import "time"

// Topics carrying link lifecycle events.
const (
	TopicLinkCreated = "link.created"
	TopicLinkVisited = "link.visited"
	TopicLinkDeleted = "link.deleted"
)

// LinkCreatedEvent is emitted after a link is stored.
type LinkCreatedEvent struct {
	ShortID     string    `json:"shortId"`
	RedirectURL string    `json:"redirectUrl"`
	AccountID   string    `json:"accountId"`
	CustomID    bool      `json:"customId"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// LinkVisitedEvent is emitted after a redirect was served and counted.
type LinkVisitedEvent struct {
	ShortID   string    `json:"shortId"`
	AccountID string    `json:"accountId"`
	Views     int64     `json:"views"`
	VisitedAt time.Time `json:"visitedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`
}

// LinkDeletedEvent is emitted after an owner deleted a link.
type LinkDeletedEvent struct {
	ShortID   string    `json:"shortId"`
	AccountID string    `json:"accountId"`
	DeletedAt time.Time `json:"deletedAt"`
}

// Visit is a LinkVisitedEvent enriched with the parsed user agent.
type Visit struct {
	LinkVisitedEvent

	Device  string
	Browser string
	OS      string
}
