package refarena

// releaser gives back one borrow. Arena and Single both implement it, so
// a Guard works for either.
type releaser interface {
	releaseBorrow(op string, i uint, m access) error
}

func (a *Arena[T]) releaseBorrow(op string, i uint, m access) error {
	return a.release(op, i, m)
}

// Guard holds one borrow until Release is called. It is the scope-bound
// counterpart of a visitor: releasing the guard has exactly the effect of the
// visitor returning.
//
//	g, err := a.BorrowExclusive(key)
//	if err != nil {
//	    return err
//	}
//	defer g.Release()
//	g.Value().Count++
type Guard[T any] struct {
	owner    releaser
	value    *T
	key      Key
	mode     access
	released bool
}

// Value returns the borrowed element, or nil once the guard is released.
// The pointer must not be used after Release.
func (g *Guard[T]) Value() *T {
	if g.released {
		return nil
	}
	return g.value
}

// Key returns the key of the borrowed element. Guards from a Single report
// the zero Key.
func (g *Guard[T]) Key() Key { return g.key }

// Exclusive reports whether the guard holds an exclusive borrow.
func (g *Guard[T]) Exclusive() bool { return g.mode == exclusive }

// Release ends the borrow. Only the first call has an effect.
func (g *Guard[T]) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	return g.owner.releaseBorrow("release", g.key.Index, g.mode)
}

// ManyGuard holds borrows of several elements until Release is called.
type ManyGuard[T any] struct {
	arena    *Arena[T]
	slots    []slot
	values   []*T
	keys     []Key
	mode     access
	released bool
}

// Values returns the borrowed elements in request order, or nil once the
// guard is released.
func (g *ManyGuard[T]) Values() []*T {
	if g.released {
		return nil
	}
	return g.values
}

// Keys returns the keys of the borrowed elements in request order.
func (g *ManyGuard[T]) Keys() []Key { return g.keys }

// Len returns the number of borrowed elements.
func (g *ManyGuard[T]) Len() int { return len(g.slots) }

// Exclusive reports whether the guard holds exclusive borrows.
func (g *ManyGuard[T]) Exclusive() bool { return g.mode == exclusive }

// Release ends every borrow, last first. Only the first call has an effect.
func (g *ManyGuard[T]) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	return g.arena.releaseMany("release", g.slots, g.mode)
}

func (a *Arena[T]) borrow(s slot, m access) (*Guard[T], error) {
	p, err := a.acquire("borrow", s, m)
	if err != nil {
		return nil, err
	}
	return &Guard[T]{owner: a, value: p, key: a.keyOf(s.index), mode: m}, nil
}

func (a *Arena[T]) borrowMany(slots []slot, m access) (*ManyGuard[T], error) {
	ptrs, err := a.acquireMany("borrow", slots, m)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, len(slots))
	for n, s := range slots {
		keys[n] = a.keyOf(s.index)
	}
	return &ManyGuard[T]{arena: a, slots: slots, values: ptrs, keys: keys, mode: m}, nil
}

// BorrowShared takes a shared borrow of the element k names and returns a
// guard holding it.
func (a *Arena[T]) BorrowShared(k Key) (*Guard[T], error) {
	return a.borrow(keySlot(k), shared)
}

// BorrowSharedAt is BorrowShared for whatever occupies index i.
func (a *Arena[T]) BorrowSharedAt(i uint) (*Guard[T], error) {
	return a.borrow(indexSlot(i), shared)
}

// BorrowExclusive takes an exclusive borrow of the element k names and
// returns a guard holding it.
func (a *Arena[T]) BorrowExclusive(k Key) (*Guard[T], error) {
	return a.borrow(keySlot(k), exclusive)
}

// BorrowExclusiveAt is BorrowExclusive for whatever occupies index i.
func (a *Arena[T]) BorrowExclusiveAt(i uint) (*Guard[T], error) {
	return a.borrow(indexSlot(i), exclusive)
}

// BorrowManyShared is the guard form of VisitManyShared.
func (a *Arena[T]) BorrowManyShared(keys []Key) (*ManyGuard[T], error) {
	return a.borrowMany(keySlots(keys), shared)
}

// BorrowManySharedAt is the guard form of VisitManySharedAt.
func (a *Arena[T]) BorrowManySharedAt(indices []uint) (*ManyGuard[T], error) {
	return a.borrowMany(indexSlots(indices), shared)
}

// BorrowManyExclusive is the guard form of VisitManyExclusive.
func (a *Arena[T]) BorrowManyExclusive(keys []Key) (*ManyGuard[T], error) {
	return a.borrowMany(keySlots(keys), exclusive)
}

// BorrowManyExclusiveAt is the guard form of VisitManyExclusiveAt.
func (a *Arena[T]) BorrowManyExclusiveAt(indices []uint) (*ManyGuard[T], error) {
	return a.borrowMany(indexSlots(indices), exclusive)
}

// BorrowRangeShared is the guard form of VisitRangeShared.
func (a *Arena[T]) BorrowRangeShared(start, end uint) (*ManyGuard[T], error) {
	slots, err := a.rangeSlots("borrow", start, end)
	if err != nil {
		return nil, err
	}
	return a.borrowMany(slots, shared)
}

// BorrowRangeExclusive is the guard form of VisitRangeExclusive.
func (a *Arena[T]) BorrowRangeExclusive(start, end uint) (*ManyGuard[T], error) {
	slots, err := a.rangeSlots("borrow", start, end)
	if err != nil {
		return nil, err
	}
	return a.borrowMany(slots, exclusive)
}
