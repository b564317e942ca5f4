package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/sections/internal/presentation/graph"
	"github.com/aretw0/sections/pkg/template"
)

func registry(t *testing.T) *template.Registry {
	t.Helper()
	reg := template.NewRegistry()
	err := reg.Register(
		template.Definition{Name: "card", Markup: `<div class="card"><h2 class="title" ck-name="title" ck-editable-type="text"></h2><div class="body"></div></div>`},
		template.Definition{Name: "page", Markup: `<main class="page"><div class="content" ck-editable-type="container" ck-allowed-elements="card" ck-default-element="card"></div></main>`},
	)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg
}

func TestGenerateMermaid(t *testing.T) {
	reg := registry(t)

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Node Shapes",
			contains: []string{
				`ck_templates__card(["card <br/> div"])`,
				`ck_templates__card__title[/"title <br/> h2"/]`,
				`ck_templates__card__child1["child1 <br/> div"]`,
				`ck_templates__page__child0[["child0 <br/> div"]]`,
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Slot And Container Edges",
			contains: []string{
				"ck_templates__card --> ck_templates__card__title",
				"ck_templates__page --> ck_templates__page__child0",
				`ck_templates__page__child0 -. "default" .-> ck_templates__card`,
			},
		},
		{
			name: "Overlay",
			overlay: &graph.GraphOverlay{
				UsedNodes:  []string{"ck-templates__card", "ck-templates__card"},
				RootPolicy: "ck-templates__page",
			},
			contains: []string{
				"class ck_templates__card used;",
				"class ck_templates__page root;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(reg.Nodes(), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if n := strings.Count(got, "used;"); tt.overlay != nil && n != 1 {
				t.Errorf("used class applied %d times, want 1", n)
			}
		})
	}
}
