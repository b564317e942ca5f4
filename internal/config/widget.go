package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/sections/pkg/template"
)

// RootTemplate is the name of the synthesized document root template.
const RootTemplate = "_root"

// Widget holds the section settings of an editor field: which sections an
// author may add and which one fills an empty document.
type Widget struct {
	DefaultSection  string   `mapstructure:"default_section"`
	EnabledSections []string `mapstructure:"enabled_sections"`
}

// Validate checks the settings against the available templates.
func (w *Widget) Validate(defs []template.Definition) error {
	known := make(map[string]bool, len(defs))
	for _, d := range defs {
		known[d.Name] = true
	}

	if len(w.enabled()) == 0 {
		return errors.New("widget: enabled_sections must not be empty")
	}
	for _, name := range w.enabled() {
		if !known[name] {
			return fmt.Errorf("widget: enabled section %q is not a template", name)
		}
	}
	if known[RootTemplate] {
		return fmt.Errorf("widget: template name %q is reserved", RootTemplate)
	}
	if def := w.defaultSection(); !slices.Contains(w.enabled(), def) {
		return fmt.Errorf("widget: default section %q is not enabled", def)
	}
	return nil
}

// Root synthesizes the root template: a single container accepting the
// enabled sections and starting with the default one.
func (w *Widget) Root(defs []template.Definition) (template.Definition, error) {
	if err := w.Validate(defs); err != nil {
		return template.Definition{}, err
	}
	markup := fmt.Sprintf(
		`<div class="root"><div class="root-container" ck-editable-type="container" ck-allowed-elements="%s" ck-default-element="%s"></div></div>`,
		strings.Join(w.enabled(), " "), w.defaultSection(),
	)
	return template.Definition{Name: RootTemplate, Label: "Document root", Markup: markup}, nil
}

// Summary describes the settings with template labels.
func (w *Widget) Summary(defs []template.Definition) []string {
	labels := make(map[string]string, len(defs))
	for _, d := range defs {
		labels[d.Name] = d.Label
	}
	label := func(name string) string {
		if l := labels[name]; l != "" {
			return l
		}
		return name
	}

	enabled := make([]string, 0, len(w.enabled()))
	for _, name := range w.enabled() {
		enabled = append(enabled, label(name))
	}
	return []string{
		"Default section: " + label(w.defaultSection()),
		"Enabled sections: " + strings.Join(enabled, ", "),
	}
}

// enabled drops empty entries.
func (w *Widget) enabled() []string {
	return slices.DeleteFunc(slices.Clone(w.EnabledSections), func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
}

// defaultSection falls back to the first enabled section.
func (w *Widget) defaultSection() string {
	if w.DefaultSection != "" {
		return w.DefaultSection
	}
	if enabled := w.enabled(); len(enabled) > 0 {
		return enabled[0]
	}
	return ""
}
