package schema

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/sections/pkg/domain"
)

// Definition describes one element name.
type Definition struct {
	Name string
	// AllowChildren lists the element names accepted as children.
	AllowChildren []string
	// AllowText accepts $text children.
	AllowText bool
	// AllowAttributes lists accepted attribute keys. AnyAttribute accepts
	// every key except internal ones.
	AllowAttributes []string
	AnyAttribute    bool
}

// ChildCheck decides a placement. decided is false when the check has no
// opinion about the given context.
type ChildCheck func(context []string, child string) (allowed, decided bool)

// Schema is safe for concurrent reads once built.
type Schema struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	order  []string
	checks []ChildCheck
}

// New returns an empty schema.
func New() *Schema {
	return &Schema{defs: make(map[string]*Definition)}
}

// Register adds a definition. Names must be unique.
func (s *Schema) Register(def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.defs[def.Name]; exists {
		return fmt.Errorf("schema: %q already registered", def.Name)
	}
	def.AllowChildren = slices.Clone(def.AllowChildren)
	def.AllowAttributes = slices.Clone(def.AllowAttributes)
	s.defs[def.Name] = &def
	s.order = append(s.order, def.Name)
	return nil
}

// AddChildCheck appends a placement callback. Callbacks are consulted
// newest first and the first decisive answer wins.
func (s *Schema) AddChildCheck(fn ChildCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, fn)
}

// IsRegistered reports whether name has a definition.
func (s *Schema) IsRegistered(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.defs[name]
	return ok
}

// Definition returns a copy of the definition of name.
func (s *Schema) Definition(name string) (Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[name]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// Definitions returns every definition in registration order.
func (s *Schema) Definitions() []Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Definition, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.defs[name])
	}
	return out
}

// CheckChild reports whether child may be placed at the end of context,
// which lists element names from the root down to the parent.
func (s *Schema) CheckChild(context []string, child string) bool {
	if len(context) == 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.checks) - 1; i >= 0; i-- {
		if allowed, decided := s.checks[i](context, child); decided {
			return allowed
		}
	}

	parent, ok := s.defs[context[len(context)-1]]
	if !ok {
		return false
	}
	if child == domain.TextName {
		return parent.AllowText
	}
	if _, known := s.defs[child]; !known {
		return false
	}
	return slices.Contains(parent.AllowChildren, child)
}

// CheckAttribute reports whether an element may carry key.
func (s *Schema) CheckAttribute(name, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[name]
	if !ok {
		return false
	}
	if slices.Contains(def.AllowAttributes, key) {
		return true
	}
	return def.AnyAttribute && !domain.IsInternalAttribute(key)
}
