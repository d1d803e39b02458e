package refarena

import "fmt"

// CheckInvariants walks the whole arena and verifies its bookkeeping: the
// active and free counts, the free-list links in both directions, and that
// no occupant is newer than the arena generation. It returns an error
// wrapping ErrInternal describing the first problem found.
//
// CheckInvariants is O(n) and meant for tests and soak runs.
func (a *Arena[T]) CheckInvariants() error {
	var active, free uint
	for i := range a.cells {
		c := &a.cells[i]
		if c.isFree() {
			free++
			continue
		}
		if c.refs() == 0 {
			return invariantError(uint(i), "occupied cell with zero refs")
		}
		if c.refs().borrowed() {
			active++
		}
		if c.generation() > a.generation {
			return invariantError(uint(i), "generation %d ahead of arena generation %d", c.generation(), a.generation)
		}
	}
	if active != a.active {
		return invariantError(noFree, "active count %d, %d cells borrowed", a.active, active)
	}
	if free != a.freeCount {
		return invariantError(noFree, "free count %d, %d cells free", a.freeCount, free)
	}

	n := uint(len(a.cells))
	prev := noFree
	var walked uint
	for i := a.freeHead; i != noFree; i = a.cells[i].nextFree() {
		if i >= n {
			return invariantError(i, "free list leaves the %d stored cells", n)
		}
		if walked == free {
			return invariantError(i, "free list longer than %d free cells", free)
		}
		c := &a.cells[i]
		if !c.isFree() {
			return invariantError(i, "occupied cell on the free list")
		}
		if c.prevFree() != prev {
			return invariantError(i, "prev link %d, want %d", c.prevFree(), prev)
		}
		prev = i
		walked++
	}
	if walked != free {
		return invariantError(noFree, "free list reaches %d of %d free cells", walked, free)
	}
	return nil
}

func invariantError(index uint, format string, args ...any) error {
	return &Error{Op: "check", Index: index, Err: ErrInternal, Detail: fmt.Sprintf(format, args...)}
}
