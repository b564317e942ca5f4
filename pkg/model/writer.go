package model

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/sections/pkg/domain"
)

// Writer mutates a document inside a change block.
type Writer struct {
	doc *Document
	ctx context.Context
}

// Document returns the document being changed.
func (w *Writer) Document() *Document { return w.doc }

// Context returns the context the change block was started with.
func (w *Writer) Context() context.Context { return w.ctx }

// Changes returns every change recorded in the current block so far,
// including those made by post-fixers.
func (w *Writer) Changes() Changes { return w.doc.differ.Changes() }

// CreateElement creates a detached element.
func (w *Writer) CreateElement(name string, attrs map[string]string) NodeID {
	return w.doc.alloc(name, maps.Clone(attrs), "").ID
}

// CreateText creates a detached text node.
func (w *Writer) CreateText(data string) NodeID {
	return w.doc.alloc(domain.TextName, nil, data).ID
}

// Insert places a detached node under parent at offset. An offset out of
// range appends. The schema is consulted first.
func (w *Writer) Insert(id, parent NodeID, offset int) error {
	n, p, err := w.pair(id, parent)
	if err != nil {
		return err
	}
	if n.parent != 0 {
		return fmt.Errorf("node %d already has a parent, use Move", id)
	}
	if err := w.check(p, n); err != nil {
		return err
	}
	w.attach(n, p, offset)
	return nil
}

// Append inserts a detached node as the last child of parent.
func (w *Writer) Append(id, parent NodeID) error {
	return w.Insert(id, parent, -1)
}

// AppendElement creates an element and appends it to parent.
func (w *Writer) AppendElement(name string, attrs map[string]string, parent NodeID) (NodeID, error) {
	id := w.CreateElement(name, attrs)
	if err := w.Append(id, parent); err != nil {
		delete(w.doc.nodes, id)
		return 0, err
	}
	return id, nil
}

// Move relocates an attached node under parent at offset, where offset
// counts parent's children once the node has been taken out. Identity and
// content are preserved.
func (w *Writer) Move(id, parent NodeID, offset int) error {
	n, p, err := w.pair(id, parent)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return fmt.Errorf("cannot move root %q", n.root)
	}
	for anc := parent; anc != 0; anc = w.doc.nodes[anc].parent {
		if anc == id {
			return fmt.Errorf("cannot move node %d into its own subtree", id)
		}
	}
	if err := w.check(p, n); err != nil {
		return err
	}
	w.detach(n)
	w.attach(n, p, offset)
	return nil
}

// Remove moves a node to the graveyard root.
func (w *Writer) Remove(id NodeID) error {
	n, ok := w.doc.nodes[id]
	if !ok {
		return fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	if n.IsRoot() {
		return fmt.Errorf("cannot remove root %q", n.root)
	}
	if n.parent != 0 {
		w.detach(n)
	}
	w.attach(n, w.doc.nodes[w.doc.roots[domain.GraveyardRoot]], -1)
	return nil
}

// Clear removes every child of id.
func (w *Writer) Clear(id NodeID) error {
	n, ok := w.doc.nodes[id]
	if !ok {
		return fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	for _, c := range slices.Clone(n.children) {
		if err := w.Remove(c); err != nil {
			return err
		}
	}
	return nil
}

// SetAttribute sets an attribute. Setting the current value records nothing.
func (w *Writer) SetAttribute(id NodeID, key, value string) error {
	n, ok := w.doc.nodes[id]
	if !ok {
		return fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	old, had := n.Attrs[key]
	if had && old == value {
		return nil
	}
	n.Attrs[key] = value
	ch := Change{Type: ChangeAttribute, Node: id, Name: n.Name, Key: key, New: &value}
	if had {
		ch.Old = &old
	}
	w.recordIfAttached(id, ch)
	return nil
}

// RemoveAttribute deletes an attribute if present.
func (w *Writer) RemoveAttribute(id NodeID, key string) error {
	n, ok := w.doc.nodes[id]
	if !ok {
		return fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	old, had := n.Attrs[key]
	if !had {
		return nil
	}
	delete(n.Attrs, key)
	w.recordIfAttached(id, Change{Type: ChangeAttribute, Node: id, Name: n.Name, Key: key, Old: &old})
	return nil
}

func (w *Writer) pair(id, parent NodeID) (*Node, *Node, error) {
	n, ok := w.doc.nodes[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: node %d", domain.ErrDetached, id)
	}
	p, ok := w.doc.nodes[parent]
	if !ok {
		return nil, nil, fmt.Errorf("%w: parent %d", domain.ErrDetached, parent)
	}
	if p.IsText() {
		return nil, nil, fmt.Errorf("%w: %s cannot hold children", domain.ErrIllegalChild, domain.TextName)
	}
	return n, p, nil
}

// Accepts reports whether an element named name may be inserted into
// parent under the document schema.
func (w *Writer) Accepts(parent NodeID, name string) bool {
	p, ok := w.doc.nodes[parent]
	if !ok || p.IsText() {
		return false
	}
	return w.accepts(p, name)
}

func (w *Writer) accepts(parent *Node, name string) bool {
	if w.doc.schema == nil || parent.root == domain.GraveyardRoot {
		return true
	}
	return w.doc.schema.CheckChild(w.doc.Path(parent.ID), name)
}

func (w *Writer) check(parent, child *Node) error {
	if !w.accepts(parent, child.Name) {
		return fmt.Errorf("%w: %s in %s", domain.ErrIllegalChild, child.Name, parent.Name)
	}
	return nil
}

func (w *Writer) attach(n, p *Node, offset int) {
	if offset < 0 || offset > len(p.children) {
		offset = len(p.children)
	}
	p.children = slices.Insert(p.children, offset, n.ID)
	n.parent = p.ID
	w.recordIfAttached(p.ID, Change{
		Type: ChangeInsert, Node: n.ID, Name: n.Name,
		Parent: p.ID, ParentName: p.Name, Offset: offset,
	})
}

func (w *Writer) detach(n *Node) {
	p := w.doc.nodes[n.parent]
	offset := slices.Index(p.children, n.ID)
	p.children = slices.Delete(p.children, offset, offset+1)
	n.parent = 0
	w.recordIfAttached(p.ID, Change{
		Type: ChangeRemove, Node: n.ID, Name: n.Name,
		Parent: p.ID, ParentName: p.Name, Offset: offset,
	})
}

func (w *Writer) recordIfAttached(id NodeID, c Change) {
	if w.doc.Attached(id) {
		w.doc.differ.record(c)
	}
}
