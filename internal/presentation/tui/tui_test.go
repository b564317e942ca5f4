package tui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections/pkg/template"
)

func TestTemplatesMarkdown(t *testing.T) {
	reg := template.NewRegistry()
	require.NoError(t, reg.Register(
		template.Definition{Name: "card", Label: "Card", Markup: `<div class="card"><h2 class="title" ck-name="title" ck-editable-type="text"></h2></div>`},
		template.Definition{Name: "page", Markup: `<main class="page"><div class="content" ck-editable-type="container" ck-allowed-elements="card"></div></main>`},
	))

	md := TemplatesMarkdown(reg, []string{"Default section: Card"})

	assert.Contains(t, md, "| card | Card | title (text) | - |")
	assert.Contains(t, md, "| page |  | child0 (container) | card |")
	assert.Contains(t, md, "- Default section: Card")
}

func TestNewRenderer_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	render := NewRenderer(f)
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "___")
}
