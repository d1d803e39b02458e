// Package refarena implements a generational arena whose elements can be
// borrowed individually, with aliasing checked at run time.
// Typical usage: keep every node of a graph in one Arena, link nodes by Key,
// and visit them through the arena instead of holding pointers.
package refarena

import (
	"iter"
	"log/slog"
)

// Key identifies one occupant of one slot. A key goes stale once its
// occupant is removed or overwritten; stale keys never reach a later
// occupant of the same slot.
type Key struct {
	Index      uint
	Generation uint
}

// slot is a resolved operation target: a full key, or a bare index that
// accepts whatever currently occupies the cell.
type slot struct {
	index      uint
	generation uint
	keyed      bool
}

func keySlot(k Key) slot { return slot{index: k.Index, generation: k.Generation, keyed: true} }

func indexSlot(i uint) slot { return slot{index: i} }

// Arena owns a set of T values addressed by Key. Elements may be borrowed
// shared or exclusively while the arena itself keeps serving inserts,
// removals and further borrows, including from inside a visitor.
//
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	cells      []cell[T]
	active     uint // cells with refs != 1
	generation uint // generation given to the next occupant
	freeHead   uint
	freeCount  uint

	cfg config
}

// New creates an empty arena.
func New[T any](opts ...Option) *Arena[T] {
	return NewWithCapacity[T](0, opts...)
}

// NewWithCapacity creates an empty arena with room for n cells, so the first
// n inserts never reallocate. If n <= 0 no storage is reserved.
func NewWithCapacity[T any](n int, opts ...Option) *Arena[T] {
	a := &Arena[T]{
		freeHead: noFree,
		cfg:      newConfig(opts),
	}
	if n > 0 {
		if limit := a.cfg.limit(); uint(n) > limit {
			n = int(limit)
		}
		a.cells = make([]cell[T], 0, n)
	}
	return a
}

// Contains reports whether k is current.
func (a *Arena[T]) Contains(k Key) bool {
	if k.Index >= uint(len(a.cells)) {
		return false
	}
	return a.cells[k.Index].matches(keySlot(k))
}

// Keys yields the key of every live cell in index order. Cells inserted or
// removed during iteration may or may not be observed.
func (a *Arena[T]) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for i := 0; i < len(a.cells); i++ {
			c := &a.cells[i]
			if c.isFree() {
				continue
			}
			if !yield(Key{Index: uint(i), Generation: c.generation()}) {
				return
			}
		}
	}
}

// Reset drops every element but keeps the allocated storage for reuse.
// Keys issued before Reset are stale afterwards. Reset fails while any
// element is borrowed.
func (a *Arena[T]) Reset() error {
	if a.active > 0 {
		return opError("reset", ErrStructureBorrowed)
	}
	bump := false
	for i := range a.cells {
		if c := &a.cells[i]; !c.isFree() && c.generation() == a.generation {
			bump = true
			break
		}
	}
	if bump {
		if a.generation == maxGeneration {
			return opError("reset", ErrGenerationSaturated)
		}
		a.generation++
	}
	clear(a.cells)
	a.cells = a.cells[:0]
	a.freeHead = noFree
	a.freeCount = 0
	a.cfg.logger.Debug("refarena: reset", slog.Int("capacity", cap(a.cells)))
	return nil
}

// resolve finds the cell s names, checking range and staleness. It does not
// look at the borrow counter.
func (a *Arena[T]) resolve(op string, s slot) (*cell[T], error) {
	if s.index >= uint(len(a.cells)) {
		return nil, slotError(op, s, ErrOutOfRange)
	}
	c := &a.cells[s.index]
	if !c.matches(s) {
		return nil, slotError(op, s, ErrStale)
	}
	return c, nil
}

// keyOf returns the current key for occupied cell i.
func (a *Arena[T]) keyOf(i uint) Key {
	return Key{Index: i, Generation: a.cells[i].generation()}
}
