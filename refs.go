package refarena

// access selects the kind of borrow being acquired or released.
type access uint8

const (
	shared access = iota
	exclusive
)

func (m access) String() string {
	if m == exclusive {
		return "exclusive"
	}
	return "shared"
}

// refs is a cell's borrow counter. One word encodes three states:
//
//	1              unreferenced
//	2 .. MaxUint-1 (refs - 1) shared readers
//	MaxUint        one exclusive writer
//
// Zero is never a valid counter for an occupied cell.
type refs uint

const (
	refsUnborrowed refs = 1
	refsExclusive  refs = ^refs(0)
	// refsSaturated is the highest shared count; one more reader is refused.
	refsSaturated = refsExclusive - 1
)

func (r refs) borrowed() bool { return r != refsUnborrowed }

func (r refs) exclusive() bool { return r == refsExclusive }

// readers returns the number of outstanding shared borrows.
func (r refs) readers() uint {
	if r <= refsUnborrowed || r == refsExclusive {
		return 0
	}
	return uint(r - 1)
}

// acquire returns the counter after granting a borrow of kind m, or the
// sentinel explaining why the borrow is refused.
func (r refs) acquire(m access) (refs, error) {
	switch {
	case r == refsExclusive:
		return r, ErrAlreadyExclusive
	case m == exclusive && r == refsUnborrowed:
		return refsExclusive, nil
	case m == exclusive:
		return r, ErrSharedReaders
	case r == refsSaturated:
		return r, ErrReaderSaturation
	case r == 0:
		// Not a counter at all; callers treat this as a bug.
		return r, ErrInternal
	}
	return r + 1, nil
}

// release returns the counter after giving back a borrow of kind m. ok is
// false when the counter does not hold such a borrow.
func (r refs) release(m access) (next refs, ok bool) {
	if m == exclusive {
		if r != refsExclusive {
			return r, false
		}
		return refsUnborrowed, true
	}
	if r <= refsUnborrowed || r == refsExclusive {
		return r, false
	}
	return r - 1, true
}
