package refarena

import "log/slog"

// appendCell stores v in a new cell at the end of the vector. Growing the
// backing array moves every cell, which would strand the pointers held by
// live borrows, so a full vector only grows while nothing is borrowed.
func (a *Arena[T]) appendCell(op string, v T) (Key, error) {
	n := uint(len(a.cells))
	if n >= a.cfg.limit() {
		return Key{}, opError(op, ErrCapacityExhausted)
	}
	if len(a.cells) == cap(a.cells) {
		if a.active > 0 {
			return Key{}, opError(op, ErrInsertWhileBorrowed)
		}
		a.grow(1)
	}
	a.cells = append(a.cells, cell[T]{})
	a.cells[n].occupy(a.generation, v)
	return Key{Index: n, Generation: a.generation}, nil
}

// EnsureCapacity makes room for n more cells to be appended without
// reallocating, so that later inserts succeed even while borrows are live.
// It fails with ErrStructureBorrowed if that needs a reallocation now.
func (a *Arena[T]) EnsureCapacity(n int) error {
	if n <= 0 || cap(a.cells)-len(a.cells) >= n {
		return nil
	}
	if uint(len(a.cells))+uint(n) > a.cfg.limit() {
		return opError("ensure capacity", ErrCapacityExhausted)
	}
	if a.active > 0 {
		return opError("ensure capacity", ErrStructureBorrowed)
	}
	a.grow(n)
	return nil
}

// grow reallocates the vector with room for at least min more cells. The
// caller has checked that no borrow is live.
func (a *Arena[T]) grow(min int) {
	oldCap := cap(a.cells)
	newCap := 2 * oldCap
	if newCap < 4 {
		newCap = 4
	}
	if want := len(a.cells) + min; newCap < want {
		newCap = want
	}
	if limit := a.cfg.limit(); uint(newCap) > limit {
		newCap = int(limit)
	}
	cells := make([]cell[T], len(a.cells), newCap)
	copy(cells, a.cells)
	a.cells = cells
	a.cfg.logger.Debug("refarena: cell storage grew",
		slog.Int("old_cap", oldCap),
		slog.Int("new_cap", newCap),
	)
}
