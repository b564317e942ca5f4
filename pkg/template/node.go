package template

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
)

// Node is a registered template element. It is immutable once its registry
// batch has been committed.
type Node struct {
	name     string
	local    string
	template string
	tag      string
	classes  []string
	attrs    []markup.Attribute
	index    int
	parent   *Node
	slots    []*Node
	kind     *Kind

	slotNames []string
	chain     []*Node

	allowed        []string
	defaultElement string
}

// Name returns the qualified name used as the model element name.
func (n *Node) Name() string { return n.name }

// Local returns the local name (ck-name or child<index>).
func (n *Node) Local() string { return n.local }

// Template returns the name of the definition this node belongs to.
func (n *Node) Template() string { return n.template }

// Tag returns the external tag name.
func (n *Node) Tag() string { return n.tag }

// Classes returns the classes an external element must carry to match.
func (n *Node) Classes() []string { return slices.Clone(n.classes) }

// Attributes returns the template's own attributes with their values, in
// declaration order. They act as defaults on upcast and repair.
func (n *Node) Attributes() []markup.Attribute { return slices.Clone(n.attrs) }

// DefaultAttributes returns the kind-level attributes.
func (n *Node) DefaultAttributes() map[string]string { return n.kind.DefaultAttributes }

// Index returns the position among element siblings in the template.
func (n *Node) Index() int { return n.index }

// Parent returns the owning template node, or nil for a top-level template.
func (n *Node) Parent() *Node { return n.parent }

// IsTopLevel reports whether the node is the root of a template definition.
func (n *Node) IsTopLevel() bool { return n.parent == nil }

// Slots returns the child template nodes in declared order.
func (n *Node) Slots() []*Node { return slices.Clone(n.slots) }

// SlotNames returns the qualified names of the slots in declared order.
func (n *Node) SlotNames() []string { return slices.Clone(n.slotNames) }

// HasSlot reports whether name is one of the declared slots.
func (n *Node) HasSlot(name string) bool { return slices.Contains(n.slotNames, name) }

// Kind returns the kind that constructed the node.
func (n *Node) Kind() Kind { return *n.kind }

// AllowedElements returns the qualified names a container node accepts
// besides its slots.
func (n *Node) AllowedElements() []string { return slices.Clone(n.allowed) }

// DefaultElement returns the qualified name appended to an empty container.
func (n *Node) DefaultElement() string { return n.defaultElement }

// AttributeNames returns the template attribute keys merged with the kind
// defaults, deduplicated, in declaration order.
func (n *Node) AttributeNames() []string {
	names := make([]string, 0, len(n.attrs)+len(n.kind.DefaultAttributes))
	for _, a := range n.attrs {
		if !slices.Contains(names, a.Key) {
			names = append(names, a.Key)
		}
	}
	extra := make([]string, 0, len(n.kind.DefaultAttributes))
	for k := range n.kind.DefaultAttributes {
		if !slices.Contains(names, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// Ancestry returns the chain from this node up to its top-level template.
func (n *Node) Ancestry() []*Node { return slices.Clone(n.chain) }

// Matches reports whether an external element maps to this template node:
// same tag, every required class present and, for nested nodes, a parent
// element that matches the parent template.
func (n *Node) Matches(el *markup.Element) bool {
	return matchChain(n.chain, el)
}

func matchChain(chain []*Node, el *markup.Element) bool {
	if len(chain) == 0 {
		return true
	}
	t := chain[0]
	if !el.IsElement() || el.Tag != t.tag {
		return false
	}
	for _, cls := range t.classes {
		if !el.HasClass(cls) {
			return false
		}
	}
	if len(chain) == 1 {
		return true
	}
	return matchChain(chain[1:], el.Parent)
}

func newNode(el *markup.Element, kind *Kind, parent *Node, index int, template string) *Node {
	local := "child" + strconv.Itoa(index)
	if v, ok := el.Attr(domain.AttrName); ok && v != "" {
		local = v
	}

	n := &Node{
		local:    local,
		template: template,
		tag:      el.Tag,
		classes:  el.Classes(),
		attrs:    slices.Clone(el.Attrs),
		index:    index,
		parent:   parent,
		kind:     kind,
	}

	chainName := local
	if parent != nil {
		chainName = strings.TrimPrefix(parent.name, domain.QualifiedPrefix) + domain.NameSeparator + local
	}
	n.name = domain.QualifiedPrefix + chainName

	n.chain = []*Node{n}
	if parent != nil {
		n.chain = append(n.chain, parent.chain...)
	}

	if kind.Container {
		if v, ok := el.Attr(domain.AttrAllowedElements); ok {
			for _, name := range strings.Fields(v) {
				n.allowed = append(n.allowed, domain.QualifiedName(name))
			}
		}
		if v, ok := el.Attr(domain.AttrDefaultElement); ok && strings.TrimSpace(v) != "" {
			n.defaultElement = domain.QualifiedName(strings.TrimSpace(v))
		}
	}
	return n
}

// ModelAttributes returns the template attributes that become model
// attributes: everything except internal ck- keys. The class value is the
// default class list of the node.
func (n *Node) ModelAttributes() []markup.Attribute {
	out := make([]markup.Attribute, 0, len(n.attrs))
	for _, a := range n.attrs {
		if domain.IsInternalAttribute(a.Key) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// AcceptsChild reports whether a model element named child may be placed
// under a node of this template.
func (n *Node) AcceptsChild(child string) bool {
	if child == domain.TextName {
		return n.kind.AllowText
	}
	return n.HasSlot(child) || slices.Contains(n.allowed, child)
}
