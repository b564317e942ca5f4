package model

import (
	"encoding/binary"
	"io"
	"log/slog"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/aretw0/sections/pkg/domain"
)

// Schema decides whether an element may be placed under a parent.
// context lists the element names from the root down to the parent.
type Schema interface {
	CheckChild(context []string, child string) bool
}

// Document is a tree arena with named roots. It is not safe for
// concurrent use.
type Document struct {
	nodes     map[NodeID]*Node
	roots     map[string]NodeID
	rootOrder []string
	next      NodeID

	schema    Schema
	maxCycles int
	logger    *slog.Logger

	fixers    []*postFixer
	listeners []*listener
	history   []Batch

	writer  *Writer
	differ  Differ
	pending []queuedChange
}

// Option configures a Document.
type Option func(*Document)

// WithSchema sets the schema consulted on every insertion.
func WithSchema(s Schema) Option {
	return func(d *Document) {
		d.schema = s
	}
}

// WithMaxRepairCycles overrides the post-fixer cycle limit. Zero or a
// negative value restores the default of 64 + 4 per attached node.
func WithMaxRepairCycles(n int) Option {
	return func(d *Document) {
		d.maxCycles = n
	}
}

// WithLogger sets the document logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDocument creates a document with the main and graveyard roots.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		nodes:  make(map[NodeID]*Node),
		roots:  make(map[string]NodeID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.AddRoot(domain.MainRoot)
	d.AddRoot(domain.GraveyardRoot)
	return d
}

// SetSchema replaces the schema. A nil schema accepts every insertion.
func (d *Document) SetSchema(s Schema) { d.schema = s }

// Schema returns the schema in use, or nil.
func (d *Document) Schema() Schema { return d.schema }

// AddRoot creates a named root, returning the existing one if present.
func (d *Document) AddRoot(name string) NodeID {
	if id, ok := d.roots[name]; ok {
		return id
	}
	n := d.alloc(domain.RootName, nil, "")
	n.root = name
	d.roots[name] = n.ID
	d.rootOrder = append(d.rootOrder, name)
	return n.ID
}

// Root returns the node ID of a named root, or 0.
func (d *Document) Root(name string) NodeID { return d.roots[name] }

// RootNames returns the root names in creation order, graveyard excluded.
func (d *Document) RootNames() []string {
	return slices.DeleteFunc(slices.Clone(d.rootOrder), func(name string) bool {
		return name == domain.GraveyardRoot
	})
}

// Node returns a node by ID. The result must be treated as read-only.
func (d *Document) Node(id NodeID) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Name returns the element name of id, or "".
func (d *Document) Name(id NodeID) string {
	if n, ok := d.nodes[id]; ok {
		return n.Name
	}
	return ""
}

// Parent returns the parent of id, or 0.
func (d *Document) Parent(id NodeID) NodeID {
	if n, ok := d.nodes[id]; ok {
		return n.parent
	}
	return 0
}

// Children returns the children of id in order.
func (d *Document) Children(id NodeID) []NodeID {
	if n, ok := d.nodes[id]; ok {
		return slices.Clone(n.children)
	}
	return nil
}

// ChildNames returns the element names of the children of id.
func (d *Document) ChildNames(id NodeID) []string {
	n, ok := d.nodes[id]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(n.children))
	for _, c := range n.children {
		names = append(names, d.nodes[c].Name)
	}
	return names
}

// Index returns the position of id among its siblings, or -1.
func (d *Document) Index(id NodeID) int {
	n, ok := d.nodes[id]
	if !ok || n.parent == 0 {
		return -1
	}
	return slices.Index(d.nodes[n.parent].children, id)
}

// RootOf returns the root a node is attached to, or 0 when detached.
func (d *Document) RootOf(id NodeID) NodeID {
	for id != 0 {
		n, ok := d.nodes[id]
		if !ok {
			return 0
		}
		if n.IsRoot() {
			return id
		}
		id = n.parent
	}
	return 0
}

// Attached reports whether id belongs to a root other than the graveyard.
func (d *Document) Attached(id NodeID) bool {
	root := d.RootOf(id)
	return root != 0 && d.nodes[root].root != domain.GraveyardRoot
}

// Path returns the element names from the root down to id, inclusive.
func (d *Document) Path(id NodeID) []string {
	var path []string
	for id != 0 {
		n, ok := d.nodes[id]
		if !ok {
			break
		}
		path = append(path, n.Name)
		id = n.parent
	}
	slices.Reverse(path)
	return path
}

// Ancestor returns the nearest ancestor of id (id included) accepted by
// fn, or 0.
func (d *Document) Ancestor(id NodeID, fn func(*Node) bool) NodeID {
	for id != 0 {
		n, ok := d.nodes[id]
		if !ok {
			return 0
		}
		if fn(n) {
			return id
		}
		id = n.parent
	}
	return 0
}

// Walk visits id and its descendants in preorder. Returning false from
// fn skips the node's subtree.
func (d *Document) Walk(id NodeID, fn func(*Node) bool) {
	n, ok := d.nodes[id]
	if !ok || !fn(n) {
		return
	}
	for _, c := range n.children {
		d.Walk(c, fn)
	}
}

// Descendants returns the descendants of id in postorder (children
// before their parent), id excluded.
func (d *Document) Descendants(id NodeID) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(cur NodeID) {
		for _, c := range d.nodes[cur].children {
			visit(c)
			out = append(out, c)
		}
	}
	if _, ok := d.nodes[id]; ok {
		visit(id)
	}
	return out
}

// Size returns the number of nodes attached to non-graveyard roots,
// roots excluded.
func (d *Document) Size() int {
	size := 0
	for _, name := range d.RootNames() {
		size += len(d.Descendants(d.roots[name]))
	}
	return size
}

// History returns the committed batches, oldest first.
func (d *Document) History() []Batch {
	return slices.Clone(d.history)
}

// Clone returns a deep copy without post-fixers, listeners or history.
func (d *Document) Clone() *Document {
	c := &Document{
		nodes:     make(map[NodeID]*Node, len(d.nodes)),
		roots:     make(map[string]NodeID, len(d.roots)),
		rootOrder: slices.Clone(d.rootOrder),
		next:      d.next,
		schema:    d.schema,
		maxCycles: d.maxCycles,
		logger:    d.logger,
	}
	for id, n := range d.nodes {
		c.nodes[id] = n.clone()
	}
	for name, id := range d.roots {
		c.roots[name] = id
	}
	return c
}

// Fingerprint hashes the structure of every non-graveyard root: element
// names, attributes and text, but not node IDs.
func (d *Document) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	var write func(NodeID)
	write = func(id NodeID) {
		n := d.nodes[id]
		_, _ = h.WriteString(n.Name)
		_, _ = h.Write([]byte{0})
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = h.WriteString(k)
			_, _ = h.Write([]byte{1})
			_, _ = h.WriteString(n.Attrs[k])
			_, _ = h.Write([]byte{2})
		}
		_, _ = h.WriteString(n.Data)
		binary.LittleEndian.PutUint64(buf[:], uint64(len(n.children)))
		_, _ = h.Write(buf[:])
		for _, c := range n.children {
			write(c)
		}
	}
	for _, name := range d.RootNames() {
		_, _ = h.WriteString(name)
		write(d.roots[name])
	}
	return h.Sum64()
}

func (d *Document) alloc(name string, attrs map[string]string, data string) *Node {
	d.next++
	if attrs == nil {
		attrs = make(map[string]string)
	}
	n := &Node{ID: d.next, Name: name, Attrs: attrs, Data: data}
	d.nodes[n.ID] = n
	return n
}

func (d *Document) cycleLimit() int {
	if d.maxCycles > 0 {
		return d.maxCycles
	}
	return 64 + 4*d.Size()
}

