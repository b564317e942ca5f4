package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/template"
)

// Normalizer repairs nodes of registered templates.
type Normalizer struct {
	reg    *template.Registry
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Normalizer and the RootEnforcer.
type Option func(*options)

type options struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// WithLifecycleHooks sets the hooks notified of each repair.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewNormalizer creates a Normalizer for reg.
func NewNormalizer(reg *template.Registry, opts ...Option) *Normalizer {
	o := buildOptions(opts)
	return &Normalizer{reg: reg, hooks: o.hooks, logger: o.logger}
}

// Normalize repairs a single node and reports whether its children changed.
//
// Missing template attributes are copied onto the node first. Children are
// then arranged as: children that are not slots, in their current relative
// order, followed by each declared slot in order. A slot is represented by
// its first occurrence; further occurrences follow the representative.
// Missing slots are created empty. Nodes of unregistered names are left
// alone.
func (n *Normalizer) Normalize(w *model.Writer, id model.NodeID) (bool, error) {
	doc := w.Document()
	node, ok := doc.Node(id)
	if !ok {
		return false, fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	t, ok := n.reg.Get(node.Name)
	if !ok {
		return false, nil
	}

	for _, a := range t.ModelAttributes() {
		if _, has := node.Attr(a.Key); !has {
			if err := w.SetAttribute(id, a.Key, a.Value); err != nil {
				return false, err
			}
		}
	}

	changed, err := n.arrangeSlots(w, id, t)
	if err != nil {
		return changed, err
	}

	if t.Kind().Container && t.DefaultElement() != "" && len(doc.Children(id)) == 0 {
		created, err := w.AppendElement(t.DefaultElement(), nil, id)
		if err != nil {
			return changed, fmt.Errorf("failed to fill container %s: %w", t.Name(), err)
		}
		n.emit(w, domain.EventSlotCreated, t.Name(), t.DefaultElement())
		if _, err := n.NormalizeTree(w, created); err != nil {
			return true, err
		}
		changed = true
	}
	return changed, nil
}

func (n *Normalizer) arrangeSlots(w *model.Writer, id model.NodeID, t *template.Node) (bool, error) {
	slots := t.SlotNames()
	if len(slots) == 0 {
		return false, nil
	}
	doc := w.Document()
	children := doc.Children(id)

	groups := make(map[string][]model.NodeID, len(slots))
	target := make([]model.NodeID, 0, len(children)+len(slots))
	for _, c := range children {
		name := doc.Name(c)
		if t.HasSlot(name) {
			groups[name] = append(groups[name], c)
		} else {
			target = append(target, c)
		}
	}
	missing := false
	for _, s := range slots {
		if len(groups[s]) == 0 {
			missing = true
		}
		target = append(target, groups[s]...)
	}
	if !missing && slices.Equal(children, target) {
		return false, nil
	}

	for _, s := range slots {
		group := groups[s]
		if len(group) == 0 {
			created, err := w.AppendElement(s, nil, id)
			if err != nil {
				return true, fmt.Errorf("failed to create slot %s: %w", s, err)
			}
			n.emit(w, domain.EventSlotCreated, t.Name(), s)
			if _, err := n.NormalizeTree(w, created); err != nil {
				return true, err
			}
			continue
		}
		for _, c := range group {
			if err := w.Move(c, id, -1); err != nil {
				return true, fmt.Errorf("failed to move slot %s: %w", s, err)
			}
		}
		n.emit(w, domain.EventSlotMoved, t.Name(), s)
	}
	return true, nil
}

// NormalizeTree normalizes id and its descendants, children before their
// parents.
func (n *Normalizer) NormalizeTree(w *model.Writer, id model.NodeID) (bool, error) {
	changed := false
	for _, d := range append(w.Document().Descendants(id), id) {
		c, err := n.Normalize(w, d)
		changed = changed || c
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// PostFixer returns the repair callback of one template node. It
// normalizes, in change order, every attached node of that template which
// was inserted (directly or within an inserted subtree) or whose children
// were inserted or removed.
func (n *Normalizer) PostFixer(t *template.Node) model.PostFixer {
	name := t.Name()
	return func(w *model.Writer) bool {
		doc := w.Document()
		seen := make(map[model.NodeID]bool)
		var affected []model.NodeID
		add := func(id model.NodeID) {
			if !seen[id] && doc.Name(id) == name && doc.Attached(id) {
				seen[id] = true
				affected = append(affected, id)
			}
		}

		for _, ch := range w.Changes() {
			switch ch.Type {
			case model.ChangeInsert:
				add(ch.Parent)
				if doc.Attached(ch.Node) {
					doc.Walk(ch.Node, func(node *model.Node) bool {
						add(node.ID)
						return true
					})
				}
			case model.ChangeRemove:
				add(ch.Parent)
			}
		}

		changed := false
		for _, id := range affected {
			c, err := n.NormalizeTree(w, id)
			changed = changed || c
			if err != nil {
				n.logger.Error("normalization failed", "element", name, "node", id, "error", err)
			}
		}
		return changed
	}
}

func (n *Normalizer) emit(w *model.Writer, typ domain.EventType, element, slot string) {
	n.logger.Debug("slot repaired", "event", typ, "element", element, "slot", slot)
	n.hooks.Emit(w.Context(), &domain.RepairEvent{
		EventBase: domain.EventBase{Type: typ},
		Element:   element,
		Slot:      slot,
	})
}
