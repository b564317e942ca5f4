package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/ports"
)

// Mask replaces the value of masked attributes.
const Mask = "***"

type piiMiddleware struct {
	next     ports.DocumentStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of element
// attributes whose keys match one of the patterns (e.g. "data-email").
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, doc *domain.StoredDocument) error {
	nodes, err := markup.ParseHTML(doc.HTML)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	for _, n := range nodes {
		maskTree(n, m.patterns)
	}
	masked, err := markup.RenderHTML(nodes...)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	// Copy so the caller's document stays untouched.
	cloned := *doc
	cloned.HTML = masked
	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.StoredDocument, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func maskTree(el *markup.Element, patterns []*regexp.Regexp) {
	for i, a := range el.Attrs {
		for _, p := range patterns {
			if p.MatchString(a.Key) {
				el.Attrs[i].Value = Mask
				break
			}
		}
	}
	for _, c := range el.Children {
		maskTree(c, patterns)
	}
}
