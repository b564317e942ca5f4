package dsl

import (
	"strings"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
)

// SlotBuilder provides a fluent API for configuring a template element.
type SlotBuilder struct {
	el        *markup.Element
	parent    *SlotBuilder
	container bool
	err       *error
}

func newSlot(parent *SlotBuilder, tag string, classes []string) *SlotBuilder {
	el := markup.NewElement(tag)
	if len(classes) > 0 {
		el.SetAttr(domain.AttrClass, strings.Join(classes, " "))
	}
	s := &SlotBuilder{el: el, parent: parent}
	if parent != nil {
		parent.el.AppendChild(el)
		s.err = parent.err
	} else {
		s.err = new(error)
	}
	return s
}

// Attr sets a template attribute. Instances get it as their default value.
func (s *SlotBuilder) Attr(key, value string) *SlotBuilder {
	s.el.SetAttr(key, value)
	return s
}

// Text adds a slot that holds text and returns it.
func (s *SlotBuilder) Text(name, tag string, classes ...string) *SlotBuilder {
	return s.child(name, tag, classes).Attr(domain.AttrEditableType, "text")
}

// Slot adds a plain element slot and returns it.
func (s *SlotBuilder) Slot(name, tag string, classes ...string) *SlotBuilder {
	return s.child(name, tag, classes)
}

// Container adds a slot that holds other templates and returns it.
func (s *SlotBuilder) Container(name, tag string, classes ...string) *SlotBuilder {
	c := s.child(name, tag, classes).Attr(domain.AttrEditableType, "container")
	c.container = true
	return c
}

// Allow lists the templates a container accepts.
func (s *SlotBuilder) Allow(templates ...string) *SlotBuilder {
	if !s.container {
		s.fail(errNotContainer)
		return s
	}
	allowed := strings.Fields(s.attr(domain.AttrAllowedElements))
	allowed = append(allowed, templates...)
	return s.Attr(domain.AttrAllowedElements, strings.Join(allowed, " "))
}

// Default names the template an empty container receives.
func (s *SlotBuilder) Default(template string) *SlotBuilder {
	if !s.container {
		s.fail(errNotContainer)
		return s
	}
	return s.Attr(domain.AttrDefaultElement, template)
}

// Up returns the parent element. The root returns itself.
func (s *SlotBuilder) Up() *SlotBuilder {
	if s.parent == nil {
		return s
	}
	return s.parent
}

func (s *SlotBuilder) child(name, tag string, classes []string) *SlotBuilder {
	c := newSlot(s, tag, classes)
	if name != "" {
		c.Attr(domain.AttrName, name)
	}
	return c
}

func (s *SlotBuilder) attr(key string) string {
	v, _ := s.el.Attr(key)
	return v
}

// fail records the first error of the template.
func (s *SlotBuilder) fail(err error) {
	if *s.err == nil {
		*s.err = err
	}
}
