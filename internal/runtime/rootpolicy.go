package runtime

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/template"
)

// RootEnforcer keeps every document root, except the graveyard, down to
// exactly one child of the policy template.
type RootEnforcer struct {
	name   string
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// NewRootEnforcer creates an enforcer for the template named templateName.
func NewRootEnforcer(reg *template.Registry, templateName string, opts ...Option) (*RootEnforcer, error) {
	t, err := reg.Lookup(templateName)
	if err != nil {
		return nil, fmt.Errorf("invalid root policy: %w", err)
	}
	o := buildOptions(opts)
	return &RootEnforcer{name: t.Name(), hooks: o.hooks, logger: o.logger}, nil
}

// Name returns the qualified name of the policy template.
func (r *RootEnforcer) Name() string { return r.name }

// Enforce applies at most one fix per root: it removes the first child
// that is not of the policy type, otherwise the first surplus policy child,
// otherwise appends the policy template to an empty root. Settling takes
// as many calls as there are defects.
func (r *RootEnforcer) Enforce(w *model.Writer) (bool, error) {
	doc := w.Document()
	changed := false
	for _, rootName := range doc.RootNames() {
		root := doc.Root(rootName)
		children := doc.Children(root)

		var target model.NodeID
		for _, c := range children {
			if doc.Name(c) != r.name {
				target = c
				break
			}
		}
		if target == 0 && len(children) > 1 {
			target = children[1]
		}

		switch {
		case target != 0:
			r.logger.Debug("removing root child", "root", rootName, "element", doc.Name(target))
			if err := w.Remove(target); err != nil {
				return changed, err
			}
			r.emit(w, doc.Name(target))
			changed = true
		case len(children) == 0:
			if _, err := w.AppendElement(r.name, nil, root); err != nil {
				return changed, fmt.Errorf("failed to create root template: %w", err)
			}
			r.emit(w, r.name)
			changed = true
		}
	}
	return changed, nil
}

// PostFixer wraps Enforce as a model post-fixer.
func (r *RootEnforcer) PostFixer() model.PostFixer {
	return func(w *model.Writer) bool {
		changed, err := r.Enforce(w)
		if err != nil {
			r.logger.Error("root policy failed", "error", err)
		}
		return changed
	}
}

func (r *RootEnforcer) emit(w *model.Writer, element string) {
	r.hooks.Emit(w.Context(), &domain.RepairEvent{
		EventBase: domain.EventBase{Type: domain.EventRootRepair},
		Element:   element,
	})
}
