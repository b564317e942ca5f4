package convert

import (
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/template"
)

// UpcastRule maps matching markup elements to model elements of one
// template node.
type UpcastRule struct {
	Node *template.Node
}

// Matches reports whether el converts through this rule.
func (r UpcastRule) Matches(el *markup.Element) bool {
	return r.Node.Matches(el)
}

// Attributes returns the model attributes for el: template defaults
// overridden by the element's own values, class included. Internal keys are
// never carried into the model.
func (r UpcastRule) Attributes(el *markup.Element) map[string]string {
	attrs := make(map[string]string)
	for _, a := range r.Node.ModelAttributes() {
		attrs[a.Key] = a.Value
	}
	for _, a := range el.Attrs {
		if !domain.IsInternalAttribute(a.Key) {
			attrs[a.Key] = a.Value
		}
	}
	return attrs
}

// DowncastRule renders model elements of one template node.
type DowncastRule struct {
	Node    *template.Node
	Editing bool
}

// AttributeRule mirrors one attribute key of one element name onto the
// editing view. An empty Key mirrors every key that is not excluded.
type AttributeRule struct {
	Element string
	Key     string
}

// Rules is the full rule set of a registry.
type Rules struct {
	Upcast          []UpcastRule
	DataDowncast    map[string]DowncastRule
	EditingDowncast map[string]DowncastRule
	Attributes      map[string][]AttributeRule
}

// Generate derives the rules of every registered node, in registration
// order.
func Generate(reg *template.Registry) *Rules {
	rules := &Rules{
		DataDowncast:    make(map[string]DowncastRule),
		EditingDowncast: make(map[string]DowncastRule),
		Attributes:      make(map[string][]AttributeRule),
	}
	for _, n := range reg.Nodes() {
		rules.Upcast = append(rules.Upcast, UpcastRule{Node: n})
		rules.DataDowncast[n.Name()] = DowncastRule{Node: n}
		rules.EditingDowncast[n.Name()] = DowncastRule{Node: n, Editing: true}

		for _, key := range n.AttributeNames() {
			if mirrored(key) {
				rules.Attributes[n.Name()] = append(rules.Attributes[n.Name()], AttributeRule{Element: n.Name(), Key: key})
			}
		}
		rules.Attributes[n.Name()] = append(rules.Attributes[n.Name()], AttributeRule{Element: n.Name()})
	}
	return rules
}

// Mirrors reports whether a change of key on an element named name is
// carried to the editing view.
func (r *Rules) Mirrors(name, key string) bool {
	if !mirrored(key) {
		return false
	}
	for _, rule := range r.Attributes[name] {
		if rule.Key == "" || rule.Key == key {
			return true
		}
	}
	return false
}

func mirrored(key string) bool {
	return key != domain.AttrClass && !domain.IsInternalAttribute(key)
}
