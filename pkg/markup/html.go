package markup

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses an HTML fragment in body context.
// Comments and doctypes are dropped.
func ParseHTML(raw string) ([]*Element, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if el := fromHTML(n); el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

func fromHTML(n *html.Node) *Element {
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)
	case html.ElementNode:
		el := NewElement(n.Data)
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			el.Attrs = append(el.Attrs, Attribute{Key: key, Value: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTML(c); child != nil {
				el.AppendChild(child)
			}
		}
		return el
	default:
		return nil
	}
}

// RenderHTML serializes the given nodes, in order.
func RenderHTML(nodes ...*Element) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, toHTML(n)); err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
	}
	return buf.String(), nil
}

func toHTML(e *Element) *html.Node {
	if e.Type == TextNode {
		return &html.Node{Type: html.TextNode, Data: e.Data}
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     e.Tag,
		DataAtom: atom.Lookup([]byte(e.Tag)),
	}
	for _, a := range e.Attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Value})
	}
	for _, c := range e.Children {
		n.AppendChild(toHTML(c))
	}
	return n
}
