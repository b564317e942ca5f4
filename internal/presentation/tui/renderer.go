package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/template"
)

// NewRenderer returns a function that renders markdown using glamour.
// Outside a terminal the markdown is returned as is.
func NewRenderer(out *os.File) func(string) (string, error) {
	if !IsTerminal(out) {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width(out)),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// TemplatesMarkdown describes registered templates as a markdown table,
// followed by any extra summary lines.
func TemplatesMarkdown(reg *template.Registry, summary []string) string {
	var sb strings.Builder
	sb.WriteString("# Templates\n\n")
	sb.WriteString("| Template | Label | Slots | Accepts |\n")
	sb.WriteString("|---|---|---|---|\n")

	labels := make(map[string]string)
	for _, def := range reg.Definitions() {
		labels[def.Name] = def.Label
	}

	for _, root := range reg.Roots() {
		var slots, accepts []string
		walk(root, func(n *template.Node) {
			if n != root {
				slots = append(slots, fmt.Sprintf("%s (%s)", n.Local(), n.Kind().Name))
			}
			for _, a := range n.AllowedElements() {
				accepts = append(accepts, strings.TrimPrefix(a, domain.QualifiedPrefix))
			}
		})
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			root.Template(), labels[root.Template()], joinOrDash(slots), joinOrDash(accepts))
	}

	if len(summary) > 0 {
		sb.WriteString("\n")
		for _, line := range summary {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}
	return sb.String()
}

func walk(n *template.Node, fn func(*template.Node)) {
	fn(n)
	for _, s := range n.Slots() {
		walk(s, fn)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
