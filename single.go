package refarena

import "errors"

// Single is a one-element container with the same borrow rules as an Arena
// cell. It has no keys and no free list; errors report index 0.
//
// Single is not safe for concurrent use.
type Single[T any] struct {
	refs  refs
	value T
	cfg   config
}

// NewSingle creates a Single holding v.
func NewSingle[T any](v T, opts ...Option) *Single[T] {
	return &Single[T]{refs: refsUnborrowed, value: v, cfg: newConfig(opts)}
}

// Borrowed reports whether any borrow of the value is outstanding.
func (s *Single[T]) Borrowed() bool {
	return s.refs.borrowed()
}

func (s *Single[T]) acquire(op string, m access) (*T, error) {
	next, err := s.refs.acquire(m)
	if err != nil {
		if errors.Is(err, ErrInternal) {
			if berr := s.cfg.bug(op, 0, "zero refs"); berr != nil {
				return nil, berr
			}
		}
		return nil, indexError(op, 0, err)
	}
	s.refs = next
	return &s.value, nil
}

func (s *Single[T]) releaseBorrow(op string, _ uint, m access) error {
	next, ok := s.refs.release(m)
	if !ok {
		return s.cfg.bug(op, 0, "%s release with refs %d", m, uint(s.refs))
	}
	s.refs = next
	return nil
}

func (s *Single[T]) visit(m access, fn func(*T) error) (err error) {
	p, err := s.acquire("visit", m)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.releaseBorrow("visit", 0, m); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(p)
}

// VisitShared calls fn with a shared borrow of the value.
func (s *Single[T]) VisitShared(fn func(*T) error) error {
	return s.visit(shared, fn)
}

// VisitExclusive calls fn with an exclusive borrow of the value.
func (s *Single[T]) VisitExclusive(fn func(*T) error) error {
	return s.visit(exclusive, fn)
}

func (s *Single[T]) borrow(m access) (*Guard[T], error) {
	p, err := s.acquire("borrow", m)
	if err != nil {
		return nil, err
	}
	return &Guard[T]{owner: s, value: p, mode: m}, nil
}

// BorrowShared takes a shared borrow of the value.
func (s *Single[T]) BorrowShared() (*Guard[T], error) {
	return s.borrow(shared)
}

// BorrowExclusive takes an exclusive borrow of the value.
func (s *Single[T]) BorrowExclusive() (*Guard[T], error) {
	return s.borrow(exclusive)
}

// CloneOut returns a copy of the value, even while it is borrowed.
func (s *Single[T]) CloneOut() T {
	return cloneValue(&s.value)
}

// Replace stores v and returns the previous value. It fails with
// ErrOverwriteBorrowed while the value is borrowed.
func (s *Single[T]) Replace(v T) (T, error) {
	if s.refs.borrowed() {
		var zero T
		return zero, indexError("overwrite", 0, ErrOverwriteBorrowed)
	}
	old := s.value
	s.value = v
	return old, nil
}
