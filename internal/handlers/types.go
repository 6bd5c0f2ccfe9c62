package handlers

import "time"

// ShortenRequest is the request for creating a short link.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"The URL to redirect to" example:"https://example.com/very/long/path" json:"url" required:"false"`
		ID  string `doc:"Optional custom short id" example:"abc123" json:"id,omitempty" required:"false"`
	}
}

// ShortenResponse carries the id the link was stored under.
type ShortenResponse struct {
	Body struct {
		ID string `doc:"The short id" example:"abc123" json:"id"`
	}
}

// RedirectRequest is the request for following a short link.
type RedirectRequest struct {
	ID string `doc:"The short id" example:"abc123" path:"id"`
}

// RedirectResponse redirects to the stored URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// LinkRequest addresses a link owned by the caller.
type LinkRequest struct {
	ID string `doc:"The short id" example:"abc123" path:"id"`
}

// StatsResponse reports the view count of a link.
type StatsResponse struct {
	Body struct {
		Views int64 `doc:"Number of redirects served" example:"42" json:"views"`
	}
}

// DeleteResponse is a plain-text acknowledgement.
type DeleteResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// LinkSummary describes one owned link.
type LinkSummary struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListResponse lists the caller's links, newest first.
type ListResponse struct {
	Body struct {
		Links []LinkSummary `json:"links"`
	}
}
