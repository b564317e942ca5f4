package template

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
)

// Definition is a raw template as supplied by configuration.
type Definition struct {
	Name   string `json:"name" yaml:"name" mapstructure:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Markup string `json:"template" yaml:"template" mapstructure:"template"`
}

// Registry maps qualified names to template nodes. It is written during
// startup and read-only afterwards.
type Registry struct {
	mu     sync.RWMutex
	kinds  []Kind
	bare   bool
	nodes  map[string]*Node
	order  []*Node
	roots  []*Node
	defs   []Definition
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithKinds registers additional kinds. They are consulted before the
// built-in kinds, in the order given.
func WithKinds(kinds ...Kind) Option {
	return func(r *Registry) {
		r.kinds = append(r.kinds, kinds...)
	}
}

// WithoutDefaultKinds leaves only the kinds given through WithKinds.
// Template elements no kind applies to are skipped together with their subtree.
func WithoutDefaultKinds() Option {
	return func(r *Registry) {
		r.bare = true
	}
}

// WithLogger sets the logger used for skipped template elements.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry with the built-in kinds.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		nodes:  make(map[string]*Node),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.bare {
		r.kinds = append(r.kinds, DefaultKinds()...)
	}
	return r
}

// Register parses and registers a batch of definitions. Either every
// definition is registered or none is: the first failure is returned as a
// *domain.TemplateParseError and the registry is left untouched.
func (r *Registry) Register(defs ...Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[string]*Node)
	var order, roots []*Node

	for _, def := range defs {
		el, err := markup.ParseTemplate(def.Markup)
		if err != nil {
			return &domain.TemplateParseError{Template: def.Name, Err: err}
		}
		el.SetAttr(domain.AttrName, def.Name)

		root, err := r.build(el, nil, 0, def.Name, staged, &order)
		if err != nil {
			return &domain.TemplateParseError{Template: def.Name, Err: err}
		}
		if root == nil {
			r.logger.Debug("no kind applies to template root, skipping", "template", def.Name)
			continue
		}
		roots = append(roots, root)
	}

	for name, n := range staged {
		r.nodes[name] = n
	}
	r.order = append(r.order, order...)
	r.roots = append(r.roots, roots...)
	r.defs = append(r.defs, defs...)
	return nil
}

// RegisterMap registers definitions given as name → markup, in name order.
func (r *Registry) RegisterMap(templates map[string]string) error {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, Definition{Name: name, Markup: templates[name]})
	}
	return r.Register(defs...)
}

func (r *Registry) build(el *markup.Element, parent *Node, index int, template string, staged map[string]*Node, order *[]*Node) (*Node, error) {
	kind := r.resolveKind(el)
	if kind == nil {
		r.logger.Debug("no kind applies to template element, skipping", "template", template, "tag", el.Tag, "index", index)
		return nil, nil
	}

	n := newNode(el, kind, parent, index, template)
	if _, exists := r.nodes[n.name]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTemplate, n.name)
	}
	if _, exists := staged[n.name]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTemplate, n.name)
	}
	staged[n.name] = n
	*order = append(*order, n)

	for i, child := range el.ElementChildren() {
		slot, err := r.build(child, n, i, template, staged, order)
		if err != nil {
			return nil, err
		}
		if slot != nil {
			n.slots = append(n.slots, slot)
			n.slotNames = append(n.slotNames, slot.name)
		}
	}
	return n, nil
}

func (r *Registry) resolveKind(el *markup.Element) *Kind {
	for i := range r.kinds {
		if r.kinds[i].Applies != nil && r.kinds[i].Applies(el) {
			kind := r.kinds[i]
			return &kind
		}
	}
	return nil
}

// Get returns the node registered under a qualified name.
func (r *Registry) Get(name string) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[name]
	return n, ok
}

// Lookup returns the top-level node of a definition by its template name.
func (r *Registry) Lookup(templateName string) (*Node, error) {
	n, ok := r.Get(domain.QualifiedName(templateName))
	if !ok || !n.IsTopLevel() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTemplate, templateName)
	}
	return n, nil
}

// Has reports whether name is a registered qualified name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Nodes returns every registered node in registration order (depth-first,
// parents before their slots).
func (r *Registry) Nodes() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Roots returns the top-level nodes in registration order.
func (r *Registry) Roots() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.roots)
}

// Definitions returns the raw definitions that were registered.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.defs)
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Resolve returns the first registered node that matches el, or nil.
// Registration order decides between several matching nodes.
func (r *Registry) Resolve(el *markup.Element) *Node {
	return r.ResolveFunc(el, nil)
}

// ResolveFunc is Resolve restricted to nodes accepted by fn. A matching
// node that fn refuses does not consume el: the next match is tried.
// A nil fn accepts every node.
func (r *Registry) ResolveFunc(el *markup.Element, fn func(*Node) bool) *Node {
	for _, n := range r.Nodes() {
		if n.Matches(el) && (fn == nil || fn(n)) {
			return n
		}
	}
	return nil
}
