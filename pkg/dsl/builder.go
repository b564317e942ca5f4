package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/sections/pkg/adapters/memory"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/template"
)

// Builder manages the template set construction.
type Builder struct {
	order     []string
	templates map[string]*TemplateBuilder
}

// New creates a new template builder.
func New() *Builder {
	return &Builder{
		templates: make(map[string]*TemplateBuilder),
	}
}

// Template starts a new template.
// If the template already exists, it returns the existing builder.
func (b *Builder) Template(name string) *TemplateBuilder {
	if tb, ok := b.templates[name]; ok {
		return tb
	}
	tb := &TemplateBuilder{name: name}
	b.templates[name] = tb
	b.order = append(b.order, name)
	return tb
}

// Build renders every template to markup, in declaration order.
func (b *Builder) Build() ([]template.Definition, error) {
	defs := make([]template.Definition, 0, len(b.order))
	for _, name := range b.order {
		tb := b.templates[name]
		if tb.root == nil {
			return nil, fmt.Errorf("template %q has no root element", name)
		}
		if tb.root.err != nil {
			return nil, fmt.Errorf("template %q: %w", name, tb.root.err)
		}
		html, err := markup.RenderHTML(tb.root.el)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		defs = append(defs, template.Definition{Name: name, Label: tb.label, Markup: html})
	}
	return defs, nil
}

// Source compiles the templates into a memory TemplateSource.
func (b *Builder) Source() (*memory.Source, error) {
	defs, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build template source: %w", err)
	}
	return memory.NewSource(defs...), nil
}

// TemplateBuilder configures one template.
type TemplateBuilder struct {
	name  string
	label string
	root  *SlotBuilder
}

// Label sets the human readable name of the template.
func (t *TemplateBuilder) Label(label string) *TemplateBuilder {
	t.label = label
	return t
}

// Element sets the root element of the template and returns it.
func (t *TemplateBuilder) Element(tag string, classes ...string) *SlotBuilder {
	t.root = newSlot(nil, tag, classes)
	return t.root
}

var errNotContainer = errors.New("allowed and default elements need a container")
