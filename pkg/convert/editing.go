package convert

import (
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/markup"
	"github.com/aretw0/sections/pkg/model"
)

// EditingView is the editing downcast of a document's main root, kept in
// sync with committed changes until closed.
type EditingView struct {
	p     *Pipeline
	doc   *model.Document
	root  *markup.Element
	index map[model.NodeID]*markup.Element
	sub   model.Handle
}

// Editing builds the editing view of doc and subscribes it to changes.
func (p *Pipeline) Editing(doc *model.Document) *EditingView {
	v := &EditingView{p: p, doc: doc}
	v.rebuild()
	v.sub = doc.OnChange(func(b model.Batch) { v.Apply(b.Changes) })
	return v
}

// Apply mirrors attribute changes onto the view. Structural changes
// rebuild the whole view.
func (v *EditingView) Apply(changes model.Changes) {
	if changes.Structural() {
		v.rebuild()
		return
	}
	for _, ch := range changes {
		el, ok := v.index[ch.Node]
		if !ok || !v.p.rules.Mirrors(ch.Name, ch.Key) {
			continue
		}
		if ch.New != nil && *ch.New != "" {
			el.SetAttr(ch.Key, *ch.New)
		} else {
			el.RemoveAttr(ch.Key)
		}
	}
}

// Root returns the view root. Its children are the rendered top-level nodes.
func (v *EditingView) Root() *markup.Element { return v.root }

// Element returns the view element of a model node.
func (v *EditingView) Element(id model.NodeID) (*markup.Element, bool) {
	el, ok := v.index[id]
	return el, ok
}

// HTML renders the view content.
func (v *EditingView) HTML() (string, error) {
	return markup.RenderHTML(v.root.Children...)
}

// Close stops following document changes.
func (v *EditingView) Close() { v.sub.Remove() }

func (v *EditingView) rebuild() {
	v.index = make(map[model.NodeID]*markup.Element)
	v.root = markup.NewElement("div")
	for _, el := range v.p.downcast(v.doc, v.doc.Root(domain.MainRoot), true, v.index) {
		v.root.AppendChild(el)
	}
}
