package refarena

// StoredCount returns the number of cells, free or occupied.
func (a *Arena[T]) StoredCount() int {
	return len(a.cells)
}

// Capacity returns the number of cells the current storage can hold before
// an append has to reallocate.
func (a *Arena[T]) Capacity() int {
	return cap(a.cells)
}

// FreeCount returns the number of free cells waiting to be reused.
func (a *Arena[T]) FreeCount() int {
	return int(a.freeCount)
}

// OccupiedCount returns the number of live elements.
func (a *Arena[T]) OccupiedCount() int {
	return len(a.cells) - int(a.freeCount)
}

// ActiveCount returns the number of elements currently borrowed.
func (a *Arena[T]) ActiveCount() int {
	return int(a.active)
}

// Generation returns the generation the next new occupant will receive.
func (a *Arena[T]) Generation() uint {
	return a.generation
}

// Density returns the ratio of occupied cells to stored cells (0.0 to 1.0).
// Returns 0.0 if the arena has no cells.
func (a *Arena[T]) Density() float64 {
	if len(a.cells) == 0 {
		return 0
	}
	return float64(a.OccupiedCount()) / float64(len(a.cells))
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena[T]) Metrics() ArenaMetrics {
	return ArenaMetrics{
		Stored:     a.StoredCount(),
		Capacity:   a.Capacity(),
		Free:       a.FreeCount(),
		Occupied:   a.OccupiedCount(),
		Active:     a.ActiveCount(),
		Generation: a.Generation(),
		Density:    a.Density(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	Stored     int     // Cells, free or occupied
	Capacity   int     // Cells storable without reallocating
	Free       int     // Free cells
	Occupied   int     // Live elements
	Active     int     // Borrowed elements
	Generation uint    // Generation of the next new occupant
	Density    float64 // Ratio of occupied to stored cells (0.0-1.0)
}
