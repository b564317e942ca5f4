package domain

import "time"

// StoredDocument is the persisted form of a document: its data markup.
type StoredDocument struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
	// Sealed holds the encrypted document when it was saved through an
	// encryption middleware. HTML is empty in that case.
	Sealed    string    `json:"sealed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
