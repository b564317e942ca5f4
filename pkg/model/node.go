package model

import (
	"maps"

	"github.com/aretw0/sections/pkg/domain"
)

// NodeID identifies a node within its document. IDs are never reused.
type NodeID uint64

// Node is an element, a text node or a document root.
// Fields must only be changed through a Writer.
type Node struct {
	ID    NodeID
	Name  string
	Attrs map[string]string
	Data  string

	root     string
	parent   NodeID
	children []NodeID
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.Name == domain.TextName }

// IsRoot reports whether the node is a document root.
func (n *Node) IsRoot() bool { return n.root != "" }

// RootName returns the root name for root nodes, "" otherwise.
func (n *Node) RootName() string { return n.root }

// Attr returns an attribute value and whether it is set.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

func (n *Node) clone() *Node {
	c := *n
	c.Attrs = maps.Clone(n.Attrs)
	c.children = append([]NodeID(nil), n.children...)
	return &c
}
