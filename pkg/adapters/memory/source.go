package memory

import (
	"context"
	"slices"

	"github.com/aretw0/sections/pkg/template"
)

// Source implements ports.TemplateSource over a fixed list of definitions.
type Source struct {
	defs []template.Definition
}

// NewSource creates a source returning defs in the given order.
func NewSource(defs ...template.Definition) *Source {
	return &Source{defs: slices.Clone(defs)}
}

// NewSourceFromMap creates a source from name → markup, sorted by name.
func NewSourceFromMap(data map[string]string) *Source {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	slices.Sort(names)

	s := &Source{}
	for _, name := range names {
		s.defs = append(s.defs, template.Definition{Name: name, Markup: data[name]})
	}
	return s
}

// LoadTemplates returns a copy of the definitions.
func (s *Source) LoadTemplates(ctx context.Context) ([]template.Definition, error) {
	return slices.Clone(s.defs), nil
}
