package markup

import (
	"slices"
	"strings"
)

// NodeType distinguishes element nodes from text nodes.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Attribute is a single key/value pair. Order is preserved.
type Attribute struct {
	Key   string
	Value string
}

// Element is a node of the external tree.
type Element struct {
	Type     NodeType
	Tag      string
	Attrs    []Attribute
	Data     string
	Children []*Element
	Parent   *Element

	// Widget marks an atomically selectable unit produced by the editing downcast.
	Widget bool
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...Attribute) *Element {
	return &Element{Type: ElementNode, Tag: tag, Attrs: attrs}
}

// NewText creates a detached text node.
func NewText(data string) *Element {
	return &Element{Type: TextNode, Data: data}
}

// IsElement reports whether e is an element node.
func (e *Element) IsElement() bool {
	return e != nil && e.Type == ElementNode
}

// Attr returns the value of an attribute and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping its position when it already exists.
func (e *Element) SetAttr(key, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attribute{Key: key, Value: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	e.Attrs = slices.DeleteFunc(e.Attrs, func(a Attribute) bool { return a.Key == key })
}

// AttrMap returns the attributes as a map.
func (e *Element) AttrMap() map[string]string {
	m := make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		m[a.Key] = a.Value
	}
	return m
}

// Classes returns the class list in declaration order.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains cls.
func (e *Element) HasClass(cls string) bool {
	return slices.Contains(e.Classes(), cls)
}

// AddClass appends cls to the class list unless already present.
func (e *Element) AddClass(cls string) {
	if e.HasClass(cls) {
		return
	}
	classes := append(e.Classes(), cls)
	e.SetAttr("class", strings.Join(classes, " "))
}

// AppendChild attaches child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// ElementChildren returns the element children, skipping text.
func (e *Element) ElementChildren() []*Element {
	out := make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the concatenated text content of the subtree.
func (e *Element) Text() string {
	if e.Type == TextNode {
		return e.Data
	}
	var sb strings.Builder
	for _, c := range e.Children {
		sb.WriteString(c.Text())
	}
	return sb.String()
}

// Find returns the first element in the subtree (including e) accepted by fn.
func (e *Element) Find(fn func(*Element) bool) *Element {
	if fn(e) {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(fn); found != nil {
			return found
		}
	}
	return nil
}
