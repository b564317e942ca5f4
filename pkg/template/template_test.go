package template_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardMarkup = `<div class="card" data-tone="light">
	<h2 class="title" ck-name="title" ck-editable-type="text"></h2>
	<div class="body" ck-name="body"></div>
</div>`

func newCardRegistry(t *testing.T, opts ...template.Option) *template.Registry {
	t.Helper()
	r := template.NewRegistry(opts...)
	require.NoError(t, r.Register(template.Definition{Name: "card", Label: "Card", Markup: cardMarkup}))
	return r
}

func TestRegister_QualifiedNames(t *testing.T) {
	r := newCardRegistry(t)

	nodes := r.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "ck-templates__card", nodes[0].Name())
	assert.Equal(t, "ck-templates__card__title", nodes[1].Name())
	assert.Equal(t, "ck-templates__card__body", nodes[2].Name())

	card := nodes[0]
	assert.True(t, card.IsTopLevel())
	assert.Equal(t, []string{"ck-templates__card__title", "ck-templates__card__body"}, card.SlotNames())
	assert.Equal(t, "card", card.Template())
	assert.Equal(t, []string{"card"}, card.Classes())

	assert.Equal(t, card, nodes[1].Parent())
	assert.Equal(t, 1, nodes[2].Index())
	assert.Len(t, r.Roots(), 1)
	assert.Equal(t, 3, r.Len())
}

func TestRegister_PositionalLocalNames(t *testing.T) {
	r := template.NewRegistry()
	require.NoError(t, r.Register(template.Definition{
		Name:   "row",
		Markup: `<div class="row"><span></span><em><b></b></em></div>`,
	}))

	for _, name := range []string{
		"ck-templates__row",
		"ck-templates__row__child0",
		"ck-templates__row__child1",
		"ck-templates__row__child1__child0",
	} {
		assert.True(t, r.Has(name), name)
	}
}

func TestRegister_Kinds(t *testing.T) {
	r := newCardRegistry(t)

	title, ok := r.Get("ck-templates__card__title")
	require.True(t, ok)
	assert.Equal(t, "text", title.Kind().Name)
	assert.True(t, title.AcceptsChild(domain.TextName))

	body, _ := r.Get("ck-templates__card__body")
	assert.Equal(t, "element", body.Kind().Name)
	assert.False(t, body.AcceptsChild(domain.TextName))
}

func TestRegister_Container(t *testing.T) {
	r := template.NewRegistry()
	require.NoError(t, r.Register(
		template.Definition{Name: "card", Markup: cardMarkup},
		template.Definition{Name: "_root", Markup: `<div class="root"><div class="root-container" ck-editable-type="container" ck-allowed-elements="card hero" ck-default-element="card"></div></div>`},
	))

	container, ok := r.Get("ck-templates___root__child0")
	require.True(t, ok)
	assert.True(t, container.Kind().Container)
	assert.Equal(t, []string{"ck-templates__card", "ck-templates__hero"}, container.AllowedElements())
	assert.Equal(t, "ck-templates__card", container.DefaultElement())
	assert.True(t, container.AcceptsChild("ck-templates__card"))
	assert.False(t, container.AcceptsChild("ck-templates__card__title"))
}

func TestRegister_UserKindsComeFirst(t *testing.T) {
	media := template.Kind{
		Name:              "media",
		Applies:           func(el *markup.Element) bool { return el.Tag == "figure" },
		DefaultAttributes: map[string]string{"data-align": ""},
	}
	r := template.NewRegistry(template.WithKinds(media))
	require.NoError(t, r.Register(template.Definition{
		Name:   "figure",
		Markup: `<figure class="media" ck-editable-type="text" data-src=""></figure>`,
	}))

	n, err := r.Lookup("figure")
	require.NoError(t, err)
	assert.Equal(t, "media", n.Kind().Name)
	assert.Equal(t, []string{"class", "ck-editable-type", "data-src", "ck-name", "data-align"}, n.AttributeNames())
	assert.Equal(t, []markup.Attribute{{Key: "class", Value: "media"}, {Key: "data-src", Value: ""}}, n.ModelAttributes())
}

func TestRegister_Atomic(t *testing.T) {
	tests := []struct {
		name   string
		defs   []template.Definition
		target error
	}{
		{
			name: "malformed markup",
			defs: []template.Definition{
				{Name: "ok", Markup: `<div class="ok"></div>`},
				{Name: "broken", Markup: `<div class="broken"><span></div>`},
			},
		},
		{
			name: "duplicate across batch",
			defs: []template.Definition{
				{Name: "twice", Markup: `<div></div>`},
				{Name: "twice", Markup: `<section></section>`},
			},
			target: domain.ErrDuplicateTemplate,
		},
		{
			name: "duplicate slot names",
			defs: []template.Definition{
				{Name: "pair", Markup: `<div><p ck-name="a"></p><p ck-name="a"></p></div>`},
			},
			target: domain.ErrDuplicateTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := template.NewRegistry()
			err := r.Register(tt.defs...)
			require.Error(t, err)

			var parseErr *domain.TemplateParseError
			require.True(t, errors.As(err, &parseErr))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Zero(t, r.Len())
			assert.Empty(t, r.Definitions())
		})
	}
}

func TestRegister_DuplicateAgainstExisting(t *testing.T) {
	r := newCardRegistry(t)
	err := r.Register(template.Definition{Name: "card", Markup: `<div></div>`})
	assert.ErrorIs(t, err, domain.ErrDuplicateTemplate)
	assert.Equal(t, 3, r.Len())
}

func TestRegister_SkipsElementsWithoutKind(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	only := template.Kind{Name: "divs", Applies: func(el *markup.Element) bool { return el.Tag == "div" }}
	r := template.NewRegistry(template.WithLogger(logger), template.WithKinds(only), template.WithoutDefaultKinds())
	require.NoError(t, r.Register(template.Definition{
		Name:   "box",
		Markup: `<div><span><div></div></span><div ck-name="inner"></div></div>`,
	}))

	assert.True(t, r.Has("ck-templates__box__inner"))
	assert.False(t, r.Has("ck-templates__box__child0"))
	assert.Equal(t, 2, r.Len())
	assert.Contains(t, buf.String(), "skipping")
}

func TestLookup_Unknown(t *testing.T) {
	r := newCardRegistry(t)
	_, err := r.Lookup("missing")
	assert.ErrorIs(t, err, domain.ErrUnknownTemplate)

	_, err = r.Lookup("card__title")
	assert.ErrorIs(t, err, domain.ErrUnknownTemplate)
}

func TestResolve_AncestryChain(t *testing.T) {
	r := template.NewRegistry()
	require.NoError(t, r.Register(
		template.Definition{Name: "card", Markup: `<div class="card"><p class="text"></p></div>`},
		template.Definition{Name: "quote", Markup: `<blockquote class="quote"><p class="text"></p></blockquote>`},
	))

	nodes, err := markup.ParseHTML(`<div class="card extra"><p class="text">a</p></div><blockquote class="quote"><p class="text">b</p></blockquote><p class="text">c</p>`)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, "ck-templates__card", r.Resolve(nodes[0]).Name())
	assert.Equal(t, "ck-templates__card__child0", r.Resolve(nodes[0].Children[0]).Name())
	assert.Equal(t, "ck-templates__quote__child0", r.Resolve(nodes[1].Children[0]).Name())
	assert.Nil(t, r.Resolve(nodes[2]))
}

func TestResolve_FirstRegisteredWins(t *testing.T) {
	r := template.NewRegistry()
	require.NoError(t, r.Register(
		template.Definition{Name: "plain", Markup: `<section></section>`},
		template.Definition{Name: "fancy", Markup: `<section class="fancy"></section>`},
	))

	nodes, err := markup.ParseHTML(`<section class="fancy"></section>`)
	require.NoError(t, err)
	assert.Equal(t, "ck-templates__plain", r.Resolve(nodes[0]).Name())
}

func TestResolveFunc_RefusedMatchFallsThrough(t *testing.T) {
	r := template.NewRegistry()
	require.NoError(t, r.Register(
		template.Definition{Name: "plain", Markup: `<section></section>`},
		template.Definition{Name: "fancy", Markup: `<section class="fancy"></section>`},
	))

	nodes, err := markup.ParseHTML(`<section class="fancy"></section><article></article>`)
	require.NoError(t, err)

	var tried []string
	got := r.ResolveFunc(nodes[0], func(n *template.Node) bool {
		tried = append(tried, n.Template())
		return n.Template() != "plain"
	})
	require.NotNil(t, got)
	assert.Equal(t, "ck-templates__fancy", got.Name())
	assert.Equal(t, []string{"plain", "fancy"}, tried)

	assert.Nil(t, r.ResolveFunc(nodes[0], func(*template.Node) bool { return false }))
	assert.Nil(t, r.ResolveFunc(nodes[1], nil))
	assert.Equal(t, r.Resolve(nodes[0]), r.ResolveFunc(nodes[0], nil))
}

func TestRegisterMap_SortedOrder(t *testing.T) {
	r := template.NewRegistry()
	require.NoError(t, r.RegisterMap(map[string]string{
		"zeta":  `<div class="z"></div>`,
		"alpha": `<div class="a"></div>`,
	}))

	roots := r.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "alpha", roots[0].Template())
	assert.Equal(t, "zeta", roots[1].Template())
}
