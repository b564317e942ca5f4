package middleware

import (
	"context"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/ports"
)

type sanitizeMiddleware struct {
	next ports.DocumentStore
}

// NewSanitizeMiddleware creates a middleware that strips scripts and
// event handlers from documents before they are stored.
func NewSanitizeMiddleware() Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &sanitizeMiddleware{next: next}
	}
}

func (m *sanitizeMiddleware) Save(ctx context.Context, doc *domain.StoredDocument) error {
	cloned := *doc
	cloned.HTML = markup.Sanitize(doc.HTML)
	return m.next.Save(ctx, &cloned)
}

func (m *sanitizeMiddleware) Load(ctx context.Context, id string) (*domain.StoredDocument, error) {
	return m.next.Load(ctx, id)
}

func (m *sanitizeMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *sanitizeMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
