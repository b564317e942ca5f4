package model

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/sections/pkg/domain"
)

// BatchType tells host undo systems how to treat a batch.
type BatchType string

const (
	// BatchDefault batches are undoable steps.
	BatchDefault BatchType = "default"
	// BatchTransparent batches are merged into the surrounding history.
	BatchTransparent BatchType = "transparent"
)

// Batch is one committed change block.
type Batch struct {
	Type    BatchType
	Changes Changes
	// Cycles is the number of post-fixer rounds the commit needed.
	Cycles int
}

// PostFixer repairs the document after a change block. It returns true
// when it changed the document, which makes every post-fixer run again.
type PostFixer func(w *Writer) bool

// Handle unregisters a post-fixer or listener.
type Handle struct {
	remove func()
}

// Remove unregisters the callback. It is safe to call more than once.
func (h Handle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

type postFixer struct {
	fn PostFixer
}

type listener struct {
	fn func(Batch)
}

type queuedChange struct {
	ctx context.Context
	typ BatchType
	fn  func(*Writer) error
}

// RegisterPostFixer appends a post-fixer. Post-fixers run in registration
// order.
func (d *Document) RegisterPostFixer(fn PostFixer) Handle {
	entry := &postFixer{fn: fn}
	d.fixers = append(d.fixers, entry)
	return Handle{remove: func() {
		d.fixers = slices.DeleteFunc(d.fixers, func(p *postFixer) bool { return p == entry })
	}}
}

// OnChange registers a listener receiving every committed batch with at
// least one change.
func (d *Document) OnChange(fn func(Batch)) Handle {
	entry := &listener{fn: fn}
	d.listeners = append(d.listeners, entry)
	return Handle{remove: func() {
		d.listeners = slices.DeleteFunc(d.listeners, func(l *listener) bool { return l == entry })
	}}
}

// Change runs fn in a default change block. Called from inside another
// block, fn joins that block.
func (d *Document) Change(fn func(w *Writer) error) error {
	return d.ChangeContext(context.Background(), BatchDefault, fn)
}

// EnqueueChange runs fn in its own block once the current block, if any,
// has committed.
func (d *Document) EnqueueChange(typ BatchType, fn func(w *Writer) error) error {
	if d.writer != nil {
		d.pending = append(d.pending, queuedChange{ctx: d.writer.ctx, typ: typ, fn: fn})
		return nil
	}
	return d.ChangeContext(context.Background(), typ, fn)
}

// ChangeContext runs fn in a change block of the given type and commits
// it. The context is exposed to post-fixers through Writer.Context.
//
// Writes made before fn fails are kept: post-fixers still repair them and
// the block is committed. The error of fn is returned, joined with any
// repair error.
func (d *Document) ChangeContext(ctx context.Context, typ BatchType, fn func(w *Writer) error) error {
	if d.writer != nil {
		return fn(d.writer)
	}

	d.pending = append(d.pending, queuedChange{ctx: ctx, typ: typ, fn: fn})
	var firstErr error
	for len(d.pending) > 0 {
		next := d.pending[0]
		d.pending = d.pending[1:]
		if err := d.run(next); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Document) run(q queuedChange) error {
	w := &Writer{doc: d, ctx: q.ctx}
	d.writer = w
	defer func() { d.writer = nil }()

	fnErr := q.fn(w)
	cycles, err := d.runPostFixers(w)
	d.commit(q.typ, cycles)
	if fnErr != nil {
		return errors.Join(fnErr, err)
	}
	return err
}

func (d *Document) runPostFixers(w *Writer) (int, error) {
	if len(d.fixers) == 0 || d.differ.len() == 0 {
		return 0, nil
	}

	limit := d.cycleLimit()
	seen := map[uint64]bool{d.Fingerprint(): true}
	for cycle := 1; ; cycle++ {
		changed := false
		for _, f := range slices.Clone(d.fixers) {
			if f.fn(w) {
				changed = true
				break
			}
		}
		if !changed {
			return cycle, nil
		}
		if cycle >= limit {
			d.logger.Error("post-fixers did not settle", "cycles", cycle)
			return cycle, fmt.Errorf("%w: %d cycles", domain.ErrRepairLimit, cycle)
		}
		fp := d.Fingerprint()
		if seen[fp] {
			d.logger.Error("post-fixers revisited a previous state", "cycles", cycle)
			return cycle, fmt.Errorf("%w: after %d cycles", domain.ErrRepairLoop, cycle)
		}
		seen[fp] = true
	}
}

func (d *Document) commit(typ BatchType, cycles int) {
	changes := d.differ.reset()
	if len(changes) == 0 {
		return
	}
	b := Batch{Type: typ, Changes: changes, Cycles: cycles}
	d.history = append(d.history, b)
	d.logger.Debug("change committed", "batch", typ, "changes", len(changes), "cycles", cycles)
	for _, l := range slices.Clone(d.listeners) {
		l.fn(b)
	}
}
