package template

import (
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
)

// Matcher decides whether a kind constructs the node for a template element.
type Matcher func(el *markup.Element) bool

// Kind describes how a class of template elements behaves in the model.
type Kind struct {
	Name    string
	Applies Matcher

	// AllowText lets the node hold text children.
	AllowText bool

	// Container nodes accept the top-level templates listed in ck-allowed-elements
	// and receive a ck-default-element child when left empty.
	Container bool

	// DefaultAttributes are allowed on every node of this kind without being
	// declared in the template. Downcasts consider their keys as well.
	DefaultAttributes map[string]string
}

// Built-in kinds.
var (
	TextKind = Kind{
		Name:      "text",
		Applies:   editableType("text"),
		AllowText: true,
	}
	ContainerKind = Kind{
		Name:      "container",
		Applies:   editableType("container"),
		Container: true,
	}
	ElementKind = Kind{
		Name:    "element",
		Applies: func(*markup.Element) bool { return true },
	}
)

// DefaultKinds returns the built-in kinds in resolution order.
func DefaultKinds() []Kind {
	return []Kind{TextKind, ContainerKind, ElementKind}
}

func editableType(value string) Matcher {
	return func(el *markup.Element) bool {
		v, ok := el.Attr(domain.AttrEditableType)
		return ok && v == value
	}
}
