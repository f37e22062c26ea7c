package model

import "time"

// Message is one ingested email. The ID is the provider's message id, which
// is globally unique and serves as the natural dedup key: a message is
// ingested at most once. CategoryID == "" means uncategorized; it is the only
// field mutated after ingestion (recategorization).
type Message struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	OwnerID       string    `json:"owner_id"`
	CategoryID    string    `json:"category_id,omitempty"`
	ThreadID      string    `json:"thread_id"`
	Subject       string    `json:"subject"`
	Sender        string    `json:"sender"`
	Snippet       string    `json:"snippet"`
	HTMLBody      string    `json:"html_body"`
	CleanTextBody string    `json:"clean_text_body"`
	Summary       string    `json:"summary"`
	ReceivedAt    time.Time `json:"received_at"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InboundMessage is a fully fetched provider message after body extraction,
// before enrichment and persistence.
type InboundMessage struct {
	ID         string
	ThreadID   string
	Subject    string
	Sender     string
	Snippet    string
	HTMLBody   string
	CleanBody  string
	ReceivedAt time.Time
	IsRead     bool
}
