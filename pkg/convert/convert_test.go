package convert_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sections/pkg/convert"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/model"
	"github.com/aretw0/sections/pkg/schema"
	"github.com/aretw0/sections/pkg/template"
)

const cardMarkup = `<div class="card" data-tone="light"><h2 class="title" ck-name="title" ck-editable-type="text"></h2><div class="body" ck-name="body"></div></div>`

func setup(t *testing.T) (*convert.Pipeline, *model.Document) {
	t.Helper()
	reg := template.NewRegistry()
	require.NoError(t, reg.Register(template.Definition{Name: "card", Markup: cardMarkup}))
	doc := model.NewDocument(model.WithSchema(schema.Build(reg)))
	return convert.NewPipeline(reg), doc
}

func TestGenerate(t *testing.T) {
	p, _ := setup(t)
	rules := p.Rules()

	assert.Len(t, rules.Upcast, 3)
	assert.Len(t, rules.DataDowncast, 3)
	assert.Len(t, rules.EditingDowncast, 3)
	assert.Equal(t, []convert.AttributeRule{
		{Element: "ck-templates__card", Key: "data-tone"},
		{Element: "ck-templates__card"},
	}, rules.Attributes["ck-templates__card"])

	assert.True(t, rules.Mirrors("ck-templates__card", "data-x"))
	assert.False(t, rules.Mirrors("ck-templates__card", "class"))
	assert.False(t, rules.Mirrors("ck-templates__card", "ck-name"))
	assert.False(t, rules.Mirrors("paragraph", "data-x"))
}

func TestRoundTrip(t *testing.T) {
	p, doc := setup(t)
	const src = `<div class="card featured" data-tone="dark" data-x="1"><h2 class="title">Hi</h2><div class="body"></div></div>`

	report, err := p.SetData(doc, src)
	require.NoError(t, err)
	assert.Equal(t, convert.Report{Converted: 4}, report)

	out, err := p.GetData(doc)
	require.NoError(t, err)
	assert.Equal(t, src, out)

	card := doc.Children(doc.Root(domain.MainRoot))[0]
	n, _ := doc.Node(card)
	assert.Equal(t, map[string]string{"class": "card featured", "data-tone": "dark", "data-x": "1"}, n.Attrs)
}

func TestDowncast_CompletesRequiredClasses(t *testing.T) {
	p, doc := setup(t)
	root := doc.Root(domain.MainRoot)

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		_, err := w.AppendElement("ck-templates__card", map[string]string{"class": "featured"}, root)
		return err
	}))

	got := p.Downcast(doc, root, false)
	require.Len(t, got, 1)
	cls, _ := got[0].Attr("class")
	assert.Equal(t, "featured card", cls)
}

func TestUpcast_FallsThroughToPlaceableTemplate(t *testing.T) {
	reg := template.NewRegistry()
	require.NoError(t, reg.Register(
		template.Definition{Name: "plain", Markup: `<div></div>`},
		template.Definition{Name: "panel", Markup: `<section><div ck-name="inner" ck-editable-type="text"></div></section>`},
	))
	p := convert.NewPipeline(reg)
	doc := model.NewDocument(model.WithSchema(schema.Build(reg)))

	report, err := p.SetData(doc, `<section><div>Hello</div></section>`)
	require.NoError(t, err)
	assert.Equal(t, convert.Report{Converted: 3}, report)

	panel := doc.Children(doc.Root(domain.MainRoot))[0]
	assert.Equal(t, []string{"ck-templates__panel__inner"}, doc.ChildNames(panel))

	out, err := p.GetData(doc)
	require.NoError(t, err)
	assert.Equal(t, `<section><div>Hello</div></section>`, out)
}

func TestUpcast_Defaults(t *testing.T) {
	p, doc := setup(t)
	_, err := p.SetData(doc, `<div class="card"></div>`)
	require.NoError(t, err)

	card := doc.Children(doc.Root(domain.MainRoot))[0]
	n, _ := doc.Node(card)
	assert.Equal(t, "ck-templates__card", n.Name)
	assert.Equal(t, "light", n.Attrs["data-tone"])
}

func TestUpcast_UnmatchedAndRejected(t *testing.T) {
	p, doc := setup(t)

	report, err := p.SetData(doc, `<section>loose <div class="card"><h2 class="title">T</h2><div class="body">no text here</div></div></section><h2 class="title">orphan</h2>`)
	require.NoError(t, err)

	root := doc.Root(domain.MainRoot)
	assert.Equal(t, []string{"ck-templates__card"}, doc.ChildNames(root))
	// The section, and the title outside of a card.
	assert.Equal(t, 2, report.Unmatched)
	// "loose", the body text and "orphan".
	assert.Equal(t, 3, report.Rejected)
	assert.Equal(t, 4, report.Converted)
}

func TestEditingDowncast(t *testing.T) {
	p, doc := setup(t)
	_, err := p.SetData(doc, `<div class="card" data-tone="dark"><h2 class="title">Hi</h2><div class="body"></div></div>`)
	require.NoError(t, err)

	view := p.Editing(doc)
	defer view.Close()

	html, err := view.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<div class="card ck-widget" data-tone="dark" contenteditable="false"><h2 class="title" contenteditable="true">Hi</h2><div class="body"></div></div>`, html)

	card := view.Root().Children[0]
	assert.True(t, card.Widget)
	assert.False(t, card.Children[0].Widget)
}

func TestEditingView_AttributeMirroring(t *testing.T) {
	p, doc := setup(t)
	_, err := p.SetData(doc, `<div class="card"><h2 class="title"></h2><div class="body"></div></div>`)
	require.NoError(t, err)
	card := doc.Children(doc.Root(domain.MainRoot))[0]

	view := p.Editing(doc)
	defer view.Close()
	before, _ := view.Element(card)

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		return w.SetAttribute(card, "data-x", "42")
	}))
	el, ok := view.Element(card)
	require.True(t, ok)
	assert.Same(t, before, el)
	v, ok := el.Attr("data-x")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		return w.RemoveAttribute(card, "data-x")
	}))
	_, ok = el.Attr("data-x")
	assert.False(t, ok)

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		return w.SetAttribute(card, "ck-secret", "1")
	}))
	_, ok = el.Attr("ck-secret")
	assert.False(t, ok)
}

func TestEditingView_StructuralRebuild(t *testing.T) {
	p, doc := setup(t)
	view := p.Editing(doc)

	root := doc.Root(domain.MainRoot)
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		_, err := w.AppendElement("ck-templates__card", nil, root)
		return err
	}))
	require.Len(t, view.Root().Children, 1)

	view.Close()
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		_, err := w.AppendElement("ck-templates__card", nil, root)
		return err
	}))
	assert.Len(t, view.Root().Children, 1)
}

func TestDowncast_SkipsUnknownElements(t *testing.T) {
	reg := template.NewRegistry()
	require.NoError(t, reg.Register(template.Definition{Name: "card", Markup: cardMarkup}))
	p := convert.NewPipeline(reg)
	doc := model.NewDocument()
	root := doc.Root(domain.MainRoot)

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		wrapper, _ := w.AppendElement("paragraph", nil, root)
		_, err := w.AppendElement("ck-templates__card", map[string]string{"data-tone": ""}, wrapper)
		return err
	}))

	got := p.Downcast(doc, root, false)
	want := []*markup.Element{markup.NewElement("div", markup.Attribute{Key: "class", Value: "card"})}
	assert.Empty(t, cmp.Diff(want, got))
}
