package convert

import (
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/model"
)

// Editing view markers.
const (
	WidgetClass         = "ck-widget"
	AttrContentEditable = "contenteditable"
)

// Downcast renders the subtree of id. Elements without a rule are
// dropped and their children rendered in their place.
func (p *Pipeline) Downcast(doc *model.Document, id model.NodeID, editing bool) []*markup.Element {
	return p.downcast(doc, id, editing, nil)
}

func (p *Pipeline) downcast(doc *model.Document, id model.NodeID, editing bool, index map[model.NodeID]*markup.Element) []*markup.Element {
	n, ok := doc.Node(id)
	if !ok {
		return nil
	}
	if n.IsText() {
		return []*markup.Element{markup.NewText(n.Data)}
	}

	rules := p.rules.DataDowncast
	if editing {
		rules = p.rules.EditingDowncast
	}
	rule, ok := rules[n.Name]
	if !ok {
		var out []*markup.Element
		for _, c := range doc.Children(id) {
			out = append(out, p.downcast(doc, c, editing, index)...)
		}
		return out
	}

	el := rule.Element(n)
	if index != nil {
		index[id] = el
	}
	for _, c := range doc.Children(id) {
		for _, child := range p.downcast(doc, c, editing, index) {
			el.AppendChild(child)
		}
	}
	return []*markup.Element{el}
}

// Element builds the markup element of a model node, without children.
// Attributes are the model attributes plus the kind's default keys,
// dropping internal keys and empty values. The class list is the model's,
// completed with any required class it lacks.
func (r DowncastRule) Element(n *model.Node) *markup.Element {
	el := markup.NewElement(r.Node.Tag())
	if classes := r.classes(n); len(classes) > 0 {
		el.SetAttr(domain.AttrClass, strings.Join(classes, " "))
	}

	for _, key := range r.attributeKeys(n) {
		if v := n.Attrs[key]; v != "" {
			el.SetAttr(key, v)
		}
	}

	if r.Editing {
		if r.Node.IsTopLevel() {
			el.Widget = true
			el.AddClass(WidgetClass)
			el.SetAttr(AttrContentEditable, "false")
		} else if r.Node.Kind().AllowText {
			el.SetAttr(AttrContentEditable, "true")
		}
	}
	return el
}

func (r DowncastRule) classes(n *model.Node) []string {
	classes := strings.Fields(n.Attrs[domain.AttrClass])
	for _, cls := range r.Node.Classes() {
		if !slices.Contains(classes, cls) {
			classes = append(classes, cls)
		}
	}
	return classes
}

// attributeKeys lists the keys to render: template order first, then the
// remaining model keys sorted.
func (r DowncastRule) attributeKeys(n *model.Node) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, key := range r.Node.AttributeNames() {
		if mirrored(key) && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	var rest []string
	for key := range n.Attrs {
		if mirrored(key) && !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
