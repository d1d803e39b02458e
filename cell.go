package refarena

const (
	// noFree terminates the free list. Indices are always below it, since a
	// free cell stores its prev link shifted left by one bit.
	noFree = ^uint(0) >> 1

	maxGeneration = ^uint(0) >> 1

	freeBit uint = 1
)

// cell is one storage slot. Two words carry either (generation, refs) for an
// occupied cell or (prev, next) free-list links for a free one; bit 0 of head
// tells them apart.
//
//	occupied: head = generation<<1      tail = refs
//	free:     head = prev<<1 | 1        tail = next
//
// value holds the zero value while the cell is free.
type cell[T any] struct {
	head  uint
	tail  uint
	value T
}

func (c *cell[T]) isFree() bool { return c.head&freeBit != 0 }

func (c *cell[T]) generation() uint { return c.head >> 1 }

func (c *cell[T]) refs() refs { return refs(c.tail) }

func (c *cell[T]) setRefs(r refs) { c.tail = uint(r) }

func (c *cell[T]) prevFree() uint { return c.head >> 1 }

func (c *cell[T]) nextFree() uint { return c.tail }

func (c *cell[T]) setPrevFree(prev uint) { c.head = prev<<1 | freeBit }

func (c *cell[T]) setNextFree(next uint) { c.tail = next }

// occupy stores v as a fresh, unborrowed occupant.
func (c *cell[T]) occupy(generation uint, v T) {
	c.head = generation << 1
	c.tail = uint(refsUnborrowed)
	c.value = v
}

// vacate turns c into a free cell linked between prev and next and returns
// the displaced value.
func (c *cell[T]) vacate(prev, next uint) T {
	v := c.value
	var zero T
	c.value = zero
	c.setPrevFree(prev)
	c.setNextFree(next)
	return v
}

// matches reports whether c is occupied by the occupant s names. Index-only
// slots match any occupant.
func (c *cell[T]) matches(s slot) bool {
	if c.isFree() {
		return false
	}
	return !s.keyed || c.generation() == s.generation
}
