package sections

import (
	"fmt"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/model"
)

// InsertSection inserts a new instance of the named template right after
// the section containing after. With after set to 0 the section is
// appended to the first node, in document order, that accepts it. Slots
// of the new section are filled by the repair passes of an attached
// engine.
func (e *Engine) InsertSection(doc *model.Document, templateName string, after model.NodeID) (model.NodeID, error) {
	t, err := e.reg.Lookup(templateName)
	if err != nil {
		return 0, err
	}
	if !e.isSection(t.Name()) {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotSection, templateName)
	}

	var parent model.NodeID
	offset := -1
	if after != 0 {
		if !doc.Attached(after) {
			return 0, fmt.Errorf("%w: node %d", domain.ErrDetached, after)
		}
		anchor := e.SectionOf(doc, after)
		if anchor == 0 {
			return 0, fmt.Errorf("%w: node %d", domain.ErrNotSection, after)
		}
		parent = doc.Parent(anchor)
		offset = doc.Index(anchor) + 1
	} else {
		parent = e.sectionParent(doc, t.Name())
		if parent == 0 {
			return 0, fmt.Errorf("%w: no place accepts %s", domain.ErrIllegalChild, templateName)
		}
	}

	var id model.NodeID
	err = doc.Change(func(w *model.Writer) error {
		id = w.CreateElement(t.Name(), nil)
		return w.Insert(id, parent, offset)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert section %s: %w", templateName, err)
	}
	return id, nil
}

// RemoveSection removes a section from the document.
func (e *Engine) RemoveSection(doc *model.Document, id model.NodeID) error {
	if err := e.checkSection(doc, id); err != nil {
		return err
	}
	return doc.Change(func(w *model.Writer) error {
		return w.Remove(id)
	})
}

// MoveSection moves a section delta positions among its siblings. The
// target position is clamped to the sibling range.
func (e *Engine) MoveSection(doc *model.Document, id model.NodeID, delta int) error {
	if err := e.checkSection(doc, id); err != nil {
		return err
	}
	parent := doc.Parent(id)
	index := doc.Index(id)
	target := min(max(index+delta, 0), len(doc.Children(parent))-1)
	if target == index {
		return nil
	}
	return doc.Change(func(w *model.Writer) error {
		return w.Move(id, parent, target)
	})
}

func (e *Engine) checkSection(doc *model.Document, id model.NodeID) error {
	if !doc.Attached(id) {
		return fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	if !e.isSection(doc.Name(id)) {
		return fmt.Errorf("%w: node %d (%s)", domain.ErrNotSection, id, doc.Name(id))
	}
	return nil
}

func (e *Engine) sectionParent(doc *model.Document, name string) model.NodeID {
	var found model.NodeID
	doc.Walk(doc.Root(domain.MainRoot), func(n *model.Node) bool {
		if found != 0 || n.IsText() {
			return false
		}
		if e.schema.CheckChild(doc.Path(n.ID), name) {
			found = n.ID
			return false
		}
		return true
	})
	return found
}
