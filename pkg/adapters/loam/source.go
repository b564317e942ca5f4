package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/sections/pkg/template"
)

// Source adapts a Loam repository to ports.TemplateSource. Every document
// is one template definition.
type Source struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a new Loam template source.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only Loam repository at path.
func Open(path string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// LoadTemplates lists the repository sorted by document ID. The template
// name defaults to the file name without extension.
func (s *Source) LoadTemplates(ctx context.Context) ([]template.Definition, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	defs := make([]template.Definition, 0, len(docs))
	ids := make(map[string]string, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID

		markup := doc.Data.Template
		if markup == "" {
			markup = doc.Content
		}
		defs = append(defs, template.Definition{
			Name:   name,
			Label:  doc.Data.Label,
			Markup: strings.TrimSpace(markup),
		})
		ids[name] = doc.ID
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return ids[defs[i].Name] < ids[defs[j].Name]
	})
	return defs, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
