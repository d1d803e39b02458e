package refarena

// Cloner is implemented by element types that need more than a plain
// assignment to copy, such as types holding slices or maps.
type Cloner[T any] interface {
	Clone() T
}

func cloneValue[T any](p *T) T {
	if c, ok := any(p).(Cloner[T]); ok {
		return c.Clone()
	}
	return *p
}

// CloneOut returns a copy of the element k names. The copy does not alias
// the cell, so this works even while the element is borrowed.
func (a *Arena[T]) CloneOut(k Key) (T, error) {
	return a.cloneOut(keySlot(k))
}

// CloneOutAt returns a copy of the element at index i.
func (a *Arena[T]) CloneOutAt(i uint) (T, error) {
	return a.cloneOut(indexSlot(i))
}

// CloneManyOut returns copies of the elements keys name, in order.
func (a *Arena[T]) CloneManyOut(keys []Key) ([]T, error) {
	return a.cloneManyOut(keySlots(keys))
}

// CloneManyOutAt returns copies of the elements at indices, in order.
func (a *Arena[T]) CloneManyOutAt(indices []uint) ([]T, error) {
	return a.cloneManyOut(indexSlots(indices))
}

func (a *Arena[T]) cloneOut(s slot) (T, error) {
	c, err := a.resolve("clone", s)
	if err != nil {
		var zero T
		return zero, err
	}
	return cloneValue(&c.value), nil
}

func (a *Arena[T]) cloneManyOut(slots []slot) ([]T, error) {
	for _, s := range slots {
		if _, err := a.resolve("clone", s); err != nil {
			return nil, err
		}
	}
	out := make([]T, len(slots))
	for n, s := range slots {
		// A Clone method may have removed a later element.
		c, err := a.resolve("clone", s)
		if err != nil {
			return nil, err
		}
		out[n] = cloneValue(&c.value)
	}
	return out, nil
}
