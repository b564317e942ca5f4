package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/sections/pkg/template"
)

// GraphOverlay contains document state to visualize on the template graph.
type GraphOverlay struct {
	// UsedNodes are qualified names present in a document.
	UsedNodes []string
	// RootPolicy is the template every document root holds.
	RootPolicy string
}

// GenerateMermaid produces a Mermaid flowchart of the template structure.
// It applies semantic styling:
// - Top-level template: ([Stadium])
// - Text slot: [/Parallelogram/]
// - Container slot: [[Subroutine]]
// - Default: [Rectangle]
// Slots hang from their parent with solid arrows. Containers point to the
// templates they accept with dotted arrows, labelled for the default one.
func GenerateMermaid(nodes []*template.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.Name())

		opener, closer := "[", "]"
		switch {
		case node.IsTopLevel():
			opener, closer = "([", "])"
		case node.Kind().Container:
			opener, closer = "[[", "]]"
		case node.Kind().AllowText:
			opener, closer = "[/", "/]"
		}

		label := node.Local()
		if tag := node.Tag(); tag != "" {
			label = fmt.Sprintf("%s <br/> %s", label, tag)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		if parent := node.Parent(); parent != nil {
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(parent.Name()), safeID)
		}

		for _, allowed := range node.AllowedElements() {
			arrow := "-.->"
			if allowed == node.DefaultElement() {
				arrow = `-. "default" .->`
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(allowed))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef used fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef root fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		usedSet := make(map[string]bool)
		for _, name := range overlay.UsedNodes {
			safeID := sanitizeMermaidID(name)
			if !usedSet[safeID] && safeID != "" {
				usedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s used;\n", safeID)
			}
		}

		if overlay.RootPolicy != "" {
			fmt.Fprintf(&sb, "    class %s root;\n", sanitizeMermaidID(overlay.RootPolicy))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
