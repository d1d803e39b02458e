package refarena

import "errors"

// acquire grants a borrow of kind m on the cell s names and returns a pointer
// to its value. Every visitor and guard goes through acquire and release.
func (a *Arena[T]) acquire(op string, s slot, m access) (*T, error) {
	c, err := a.resolve(op, s)
	if err != nil {
		return nil, err
	}
	r := c.refs()
	next, err := r.acquire(m)
	if err != nil {
		if errors.Is(err, ErrInternal) {
			if berr := a.cfg.bug(op, s.index, "occupied cell with zero refs"); berr != nil {
				return nil, berr
			}
		}
		return nil, slotError(op, s, err)
	}
	if !r.borrowed() {
		a.active++
	}
	c.setRefs(next)
	return &c.value, nil
}

// release gives back a borrow of kind m on cell i.
func (a *Arena[T]) release(op string, i uint, m access) error {
	if i >= uint(len(a.cells)) {
		return a.cfg.bug(op, i, "releasing cell beyond %d cells", len(a.cells))
	}
	c := &a.cells[i]
	if c.isFree() {
		return a.cfg.bug(op, i, "releasing a free cell")
	}
	next, ok := c.refs().release(m)
	if !ok {
		return a.cfg.bug(op, i, "%s release with refs %d", m, uint(c.refs()))
	}
	if !next.borrowed() {
		if a.active == 0 {
			return a.cfg.bug(op, i, "active count underflow")
		}
		a.active--
	}
	c.setRefs(next)
	return nil
}

// acquireMany borrows every slot in order. If one fails, the borrows already
// taken are released and the original error is returned.
func (a *Arena[T]) acquireMany(op string, slots []slot, m access) ([]*T, error) {
	ptrs := make([]*T, len(slots))
	for n, s := range slots {
		p, err := a.acquire(op, s, m)
		if err != nil {
			if rerr := a.releaseMany(op, slots[:n], m); rerr != nil {
				return nil, errors.Join(err, rerr)
			}
			return nil, err
		}
		ptrs[n] = p
	}
	return ptrs, nil
}

// releaseMany gives back the borrows on slots in reverse order.
func (a *Arena[T]) releaseMany(op string, slots []slot, m access) error {
	var errs []error
	for n := len(slots) - 1; n >= 0; n-- {
		if err := a.release(op, slots[n].index, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Arena[T]) visit(s slot, m access, fn func(*T) error) (err error) {
	p, err := a.acquire("visit", s, m)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := a.release("visit", s.index, m); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(p)
}

func (a *Arena[T]) visitMany(slots []slot, m access, fn func([]*T) error) (err error) {
	ptrs, err := a.acquireMany("visit", slots, m)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := a.releaseMany("visit", slots, m); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(ptrs)
}

// VisitShared calls fn with a shared borrow of the element k names. fn must
// not modify the value. The borrow ends when fn returns or panics, and fn's
// error is returned unchanged.
func (a *Arena[T]) VisitShared(k Key, fn func(*T) error) error {
	return a.visit(keySlot(k), shared, fn)
}

// VisitSharedAt is VisitShared for whatever occupies index i.
func (a *Arena[T]) VisitSharedAt(i uint, fn func(*T) error) error {
	return a.visit(indexSlot(i), shared, fn)
}

// VisitExclusive calls fn with an exclusive borrow of the element k names.
// While fn runs, every other borrow of that element fails, but the rest of
// the arena stays usable, including from inside fn.
func (a *Arena[T]) VisitExclusive(k Key, fn func(*T) error) error {
	return a.visit(keySlot(k), exclusive, fn)
}

// VisitExclusiveAt is VisitExclusive for whatever occupies index i.
func (a *Arena[T]) VisitExclusiveAt(i uint, fn func(*T) error) error {
	return a.visit(indexSlot(i), exclusive, fn)
}

// VisitManyShared calls fn with shared borrows of every element in keys, in
// order. A key may repeat.
func (a *Arena[T]) VisitManyShared(keys []Key, fn func([]*T) error) error {
	return a.visitMany(keySlots(keys), shared, fn)
}

// VisitManySharedAt is VisitManyShared by index.
func (a *Arena[T]) VisitManySharedAt(indices []uint, fn func([]*T) error) error {
	return a.visitMany(indexSlots(indices), shared, fn)
}

// VisitManyExclusive calls fn with exclusive borrows of every element in
// keys. Borrows are taken in order; if one fails, those already taken are
// released before the error is returned. A repeated index fails with
// ErrAlreadyExclusive.
func (a *Arena[T]) VisitManyExclusive(keys []Key, fn func([]*T) error) error {
	return a.visitMany(keySlots(keys), exclusive, fn)
}

// VisitManyExclusiveAt is VisitManyExclusive by index.
func (a *Arena[T]) VisitManyExclusiveAt(indices []uint, fn func([]*T) error) error {
	return a.visitMany(indexSlots(indices), exclusive, fn)
}

// VisitRangeShared is VisitManySharedAt over indices [start, end).
func (a *Arena[T]) VisitRangeShared(start, end uint, fn func([]*T) error) error {
	slots, err := a.rangeSlots("visit", start, end)
	if err != nil {
		return err
	}
	return a.visitMany(slots, shared, fn)
}

// VisitRangeExclusive is VisitManyExclusiveAt over indices [start, end).
func (a *Arena[T]) VisitRangeExclusive(start, end uint, fn func([]*T) error) error {
	slots, err := a.rangeSlots("visit", start, end)
	if err != nil {
		return err
	}
	return a.visitMany(slots, exclusive, fn)
}

func keySlots(keys []Key) []slot {
	slots := make([]slot, len(keys))
	for n, k := range keys {
		slots[n] = keySlot(k)
	}
	return slots
}

func indexSlots(indices []uint) []slot {
	slots := make([]slot, len(indices))
	for n, i := range indices {
		slots[n] = indexSlot(i)
	}
	return slots
}

// rangeSlots lists the indices in [start, end). Past the stored cells only
// the first index is listed; it fails when acquired, like any out of range
// index would.
func (a *Arena[T]) rangeSlots(op string, start, end uint) ([]slot, error) {
	if start > end {
		return nil, indexError(op, start, ErrOutOfRange)
	}
	if n := uint(len(a.cells)); end > n {
		if start >= n {
			return []slot{indexSlot(start)}, nil
		}
		end = n + 1
	}
	slots := make([]slot, 0, end-start)
	for i := start; i < end; i++ {
		slots = append(slots, indexSlot(i))
	}
	return slots, nil
}
