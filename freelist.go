package refarena

// The free list is doubly linked through free cells, newest first.

// pushFree vacates occupied cell i, links it at the head of the free list and
// returns its value.
func (a *Arena[T]) pushFree(i uint) T {
	head := a.freeHead
	v := a.cells[i].vacate(noFree, head)
	if head != noFree {
		a.cells[head].setPrevFree(i)
	}
	a.freeHead = i
	a.freeCount++
	return v
}

// unlinkFree detaches free cell i from wherever it sits in the list. Every
// link is checked before any is written, so a failed unlink changes nothing.
func (a *Arena[T]) unlinkFree(op string, i uint) error {
	n := uint(len(a.cells))
	c := &a.cells[i]
	if !c.isFree() {
		return a.cfg.bug(op, i, "unlinking occupied cell")
	}
	if a.freeCount == 0 {
		return a.cfg.bug(op, i, "free cell with zero free count")
	}
	prev, next := c.prevFree(), c.nextFree()
	if prev == noFree {
		if a.freeHead != i {
			return a.cfg.bug(op, i, "cell has no predecessor but free head is %d", a.freeHead)
		}
	} else if prev >= n || !a.cells[prev].isFree() || a.cells[prev].nextFree() != i {
		return a.cfg.bug(op, i, "broken prev link to %d", prev)
	}
	if next != noFree && (next >= n || !a.cells[next].isFree() || a.cells[next].prevFree() != i) {
		return a.cfg.bug(op, i, "broken next link to %d", next)
	}

	if prev == noFree {
		a.freeHead = next
	} else {
		a.cells[prev].setNextFree(next)
	}
	if next != noFree {
		a.cells[next].setPrevFree(prev)
	}
	a.freeCount--
	return nil
}

// occupyFree unlinks free cell i and stores v in it with the current
// generation.
func (a *Arena[T]) occupyFree(op string, i uint, v T) (Key, error) {
	if err := a.unlinkFree(op, i); err != nil {
		return Key{}, err
	}
	a.cells[i].occupy(a.generation, v)
	return Key{Index: i, Generation: a.generation}, nil
}

// freeList returns the free indices from head to tail. It stops after
// len(cells) steps so a cyclic list cannot hang it.
func (a *Arena[T]) freeList() []uint {
	var out []uint
	for i, steps := a.freeHead, 0; i != noFree && i < uint(len(a.cells)) && steps <= len(a.cells); steps++ {
		out = append(out, i)
		i = a.cells[i].nextFree()
	}
	return out
}
