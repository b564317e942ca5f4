package schema

import (
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/template"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	rootPolicy string
}

// WithRootPolicy restricts document roots to a single template, given by
// its template name. An empty name leaves roots unrestricted.
func WithRootPolicy(templateName string) BuildOption {
	return func(c *buildConfig) {
		c.rootPolicy = templateName
	}
}

// Build derives a schema from a registry. It installs one child check per
// template node plus one for document roots.
func Build(reg *template.Registry, opts ...BuildOption) *Schema {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := New()

	var rootChildren []string
	if cfg.rootPolicy != "" {
		rootChildren = []string{domain.QualifiedName(cfg.rootPolicy)}
	} else {
		for _, n := range reg.Roots() {
			rootChildren = append(rootChildren, n.Name())
		}
	}
	_ = s.Register(Definition{Name: domain.RootName, AllowChildren: rootChildren})
	_ = s.Register(Definition{Name: domain.TextName})
	s.AddChildCheck(func(context []string, child string) (bool, bool) {
		if context[len(context)-1] != domain.RootName {
			return false, false
		}
		for _, name := range rootChildren {
			if name == child {
				return true, true
			}
		}
		return false, true
	})

	for _, n := range reg.Nodes() {
		children := append(n.SlotNames(), n.AllowedElements()...)
		attrs := make([]string, 0)
		for _, key := range n.AttributeNames() {
			if !domain.IsInternalAttribute(key) {
				attrs = append(attrs, key)
			}
		}
		// Names are unique in the registry.
		_ = s.Register(Definition{
			Name:            n.Name(),
			AllowChildren:   children,
			AllowText:       n.Kind().AllowText,
			AllowAttributes: attrs,
			AnyAttribute:    true,
		})
		s.AddChildCheck(func(context []string, child string) (bool, bool) {
			if context[len(context)-1] != n.Name() {
				return false, false
			}
			return n.AcceptsChild(child), true
		})
	}
	return s
}
