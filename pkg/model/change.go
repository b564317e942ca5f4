package model

// ChangeType is the kind of a recorded change.
type ChangeType int

const (
	ChangeInsert ChangeType = iota
	ChangeRemove
	ChangeAttribute
)

func (t ChangeType) String() string {
	switch t {
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	case ChangeAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Change is a single structural or attribute change in an attached root.
type Change struct {
	Type ChangeType
	// Node is the inserted or removed node, or the attribute owner.
	Node NodeID
	// Name is the element name of Node.
	Name string
	// Parent is the node the insertion or removal happened in.
	Parent NodeID
	// ParentName is the element name of Parent.
	ParentName string
	// Offset is the position among Parent's children.
	Offset int

	// Key, Old and New describe attribute changes. A nil pointer means
	// the attribute was absent.
	Key string
	Old *string
	New *string
}

// Changes is an ordered list of changes.
type Changes []Change

// Inserted returns the IDs of inserted nodes, in order, without duplicates.
func (c Changes) Inserted() []NodeID {
	seen := make(map[NodeID]bool)
	var out []NodeID
	for _, ch := range c {
		if ch.Type == ChangeInsert && !seen[ch.Node] {
			seen[ch.Node] = true
			out = append(out, ch.Node)
		}
	}
	return out
}

// Attributes returns the attribute changes only.
func (c Changes) Attributes() Changes {
	var out Changes
	for _, ch := range c {
		if ch.Type == ChangeAttribute {
			out = append(out, ch)
		}
	}
	return out
}

// Structural reports whether any insertion or removal was recorded.
func (c Changes) Structural() bool {
	for _, ch := range c {
		if ch.Type != ChangeAttribute {
			return true
		}
	}
	return false
}

// Differ accumulates the changes of the current change block.
type Differ struct {
	changes Changes
}

func (d *Differ) record(c Change) {
	d.changes = append(d.changes, c)
}

// Changes returns the changes recorded so far.
func (d *Differ) Changes() Changes {
	return append(Changes(nil), d.changes...)
}

func (d *Differ) len() int { return len(d.changes) }

func (d *Differ) reset() Changes {
	out := d.changes
	d.changes = nil
	return out
}
