package ports

import (
	"context"

	"github.com/aretw0/sections/pkg/domain"
)

// DocumentStore defines the interface for persisting documents.
type DocumentStore interface {
	// Save persists a document under doc.ID, replacing any previous version.
	Save(ctx context.Context, doc *domain.StoredDocument) error

	// Load retrieves a document by ID.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, id string) (*domain.StoredDocument, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored documents.
	List(ctx context.Context) ([]string, error)
}
