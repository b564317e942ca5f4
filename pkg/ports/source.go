package ports

import (
	"context"

	"github.com/aretw0/sections/pkg/template"
)

// TemplateSource defines how the engine retrieves template definitions.
type TemplateSource interface {
	// LoadTemplates returns every definition, in registration order.
	LoadTemplates(ctx context.Context) ([]template.Definition, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed template file.
	Watch(ctx context.Context) (<-chan string, error)
}
