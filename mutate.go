package refarena

// Insert stores v and returns its key. The most recently freed cell is reused
// first; otherwise a cell is appended. Appending to full storage fails with
// ErrInsertWhileBorrowed while any element is borrowed.
func (a *Arena[T]) Insert(v T) (Key, error) {
	if a.freeHead != noFree {
		if a.freeHead >= uint(len(a.cells)) {
			if err := a.cfg.bug("insert", a.freeHead, "free head beyond %d cells", len(a.cells)); err != nil {
				return Key{}, err
			}
		}
		return a.occupyFree("insert", a.freeHead, v)
	}
	if a.freeCount != 0 {
		if err := a.cfg.bug("insert", noFree, "empty free list with free count %d", a.freeCount); err != nil {
			return Key{}, err
		}
	}
	return a.appendCell("insert", v)
}

// InsertAt stores v in the free cell at index i, wherever that cell sits in
// the free list. It never reallocates, so it is allowed while other elements
// are borrowed.
func (a *Arena[T]) InsertAt(i uint, v T) (Key, error) {
	if i >= uint(len(a.cells)) {
		return Key{}, indexError("insert", i, ErrOutOfRange)
	}
	if !a.cells[i].isFree() {
		return Key{}, indexError("insert", i, ErrNotFree)
	}
	return a.occupyFree("insert", i, v)
}

// Overwrite stores v at index i whether or not the cell is occupied. An
// existing occupant is dropped and every key to it goes stale. Overwriting a
// borrowed cell fails with ErrOverwriteBorrowed.
func (a *Arena[T]) Overwrite(i uint, v T) (Key, error) {
	if i >= uint(len(a.cells)) {
		return Key{}, indexError("overwrite", i, ErrOutOfRange)
	}
	c := &a.cells[i]
	if c.isFree() {
		return a.occupyFree("overwrite", i, v)
	}
	if c.refs().borrowed() {
		return Key{}, indexError("overwrite", i, ErrOverwriteBorrowed)
	}
	if err := a.retire("overwrite", c.generation()); err != nil {
		return Key{}, err
	}
	c.occupy(a.generation, v)
	return Key{Index: i, Generation: a.generation}, nil
}

// Remove takes the element k names out of the arena and returns it.
func (a *Arena[T]) Remove(k Key) (T, error) {
	return a.remove(keySlot(k))
}

// RemoveAt takes the element at index i out of the arena and returns it.
func (a *Arena[T]) RemoveAt(i uint) (T, error) {
	return a.remove(indexSlot(i))
}

func (a *Arena[T]) remove(s slot) (T, error) {
	var zero T
	c, err := a.resolve("remove", s)
	if err != nil {
		return zero, err
	}
	if c.refs().borrowed() {
		return zero, slotError("remove", s, ErrRemoveBorrowed)
	}
	if err := a.retire("remove", c.generation()); err != nil {
		return zero, err
	}
	return a.pushFree(s.index), nil
}

// retire advances the arena generation past an occupant of generation gen
// that is leaving its cell, so the next occupant of that cell gets a strictly
// greater generation.
func (a *Arena[T]) retire(op string, gen uint) error {
	if gen != a.generation {
		return nil
	}
	if a.generation == maxGeneration {
		return opError(op, ErrGenerationSaturated)
	}
	a.generation++
	return nil
}
