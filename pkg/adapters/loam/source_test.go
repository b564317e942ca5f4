package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections/internal/testutils"
	"github.com/aretw0/sections/pkg/template"
)

func seed(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for filename, content := range files {
		err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644)
		require.NoError(t, err)
	}
}

func TestSource_LoadTemplates(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	seed(t, tmpDir, map[string]string{
		"b-card.md": `---
name: card
label: Card
---
<div class="card"><h2 ck-name="title" ck-editable-type="text"></h2></div>
`,
		"a-hero.md": `---
label: Hero
---
<section class="hero"></section>`,
		"c-quote.json": `{
  "name": "quote",
  "template": "<blockquote class=\"quote\"></blockquote>"
}`,
	})

	source := New(loam.NewTypedRepository[TemplateMetadata](repo))
	defs, err := source.LoadTemplates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []template.Definition{
		{Name: "a-hero", Label: "Hero", Markup: `<section class="hero"></section>`},
		{Name: "card", Label: "Card", Markup: `<div class="card"><h2 ck-name="title" ck-editable-type="text"></h2></div>`},
		{Name: "quote", Markup: `<blockquote class="quote"></blockquote>`},
	}, defs)

	reg := template.NewRegistry()
	require.NoError(t, reg.Register(defs...))
	assert.Len(t, reg.Roots(), 3)
}

func TestSource_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	seed(t, tmpDir, map[string]string{
		"card.md": `---
name: card
---
<div></div>`,
		"other.md": `---
name: card
---
<section></section>`,
	})

	source := New(loam.NewTypedRepository[TemplateMetadata](repo))
	_, err := source.LoadTemplates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "card")
}
