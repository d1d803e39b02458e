package refarena

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why an operation was rejected.
//
// Every error returned by this package is an [*Error] wrapping one of these.
// Use [errors.Is] to test the kind and [errors.As] to recover the index and
// generation involved:
//
//	_, err := a.Remove(key)
//	if errors.Is(err, refarena.ErrRemoveBorrowed) {
//	    // someone is still visiting key
//	}
var (
	// ErrOutOfRange indicates an index at or beyond the stored cell count.
	ErrOutOfRange = errors.New("index out of range")

	// ErrStale indicates the key's slot is free or now holds a newer occupant.
	//
	// Index-only operations report generation 0 when the slot is free; that
	// value is a filler and carries no meaning.
	ErrStale = errors.New("stale or deleted key")

	// ErrNotFree indicates InsertAt targeted an occupied cell.
	ErrNotFree = errors.New("index not free")

	// ErrOverwriteBorrowed indicates Overwrite targeted a borrowed cell.
	ErrOverwriteBorrowed = errors.New("overwrite while borrowed")

	// ErrRemoveBorrowed indicates Remove targeted a borrowed cell.
	ErrRemoveBorrowed = errors.New("remove while borrowed")

	// ErrAlreadyExclusive indicates the cell is held by an exclusive borrow.
	ErrAlreadyExclusive = errors.New("already exclusively borrowed")

	// ErrSharedReaders indicates an exclusive borrow was requested while
	// shared readers hold the cell.
	ErrSharedReaders = errors.New("shared readers present")

	// ErrReaderSaturation indicates the cell's reader count is at its limit.
	ErrReaderSaturation = errors.New("reader count saturated")

	// ErrInsertWhileBorrowed indicates an append would reallocate cell
	// storage while borrows are live.
	//
	// Recovery: release borrows first, or reserve room up front with
	// [Arena.EnsureCapacity] or [NewWithCapacity].
	ErrInsertWhileBorrowed = errors.New("insert at capacity while borrowed")

	// ErrCapacityExhausted indicates no further index can be issued.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	// ErrGenerationSaturated indicates the generation counter cannot advance,
	// so recycling a slot would make old keys current again.
	ErrGenerationSaturated = errors.New("generation saturated")

	// ErrStructureBorrowed indicates Reset or EnsureCapacity was attempted
	// while borrows are live.
	ErrStructureBorrowed = errors.New("structural change while borrowed")

	// ErrInternal indicates the arena detected a violation of its own
	// invariants. This is a bug in refarena, not in the caller.
	ErrInternal = errors.New("internal invariant violation")
)

// Error is the concrete error type returned by arena operations.
type Error struct {
	Op         string // operation that failed, e.g. "visit" or "remove"
	Index      uint
	Generation uint
	Keyed      bool   // Generation came from a caller-supplied key
	Err        error  // one of the sentinel errors
	Detail     string // extra context for ErrInternal
}

func (e *Error) Error() string {
	var where string
	switch {
	case e.Keyed:
		where = fmt.Sprintf(" key {%d %d}", e.Index, e.Generation)
	case e.hasIndex():
		where = fmt.Sprintf(" index %d", e.Index)
	}
	msg := "refarena: " + e.Op + where + ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// hasIndex reports whether the error kind is about a particular cell.
func (e *Error) hasIndex() bool {
	if e.Index == noFree {
		return false
	}
	switch e.Err {
	case ErrInsertWhileBorrowed, ErrCapacityExhausted, ErrGenerationSaturated, ErrStructureBorrowed:
		return false
	}
	return true
}

func indexError(op string, index uint, kind error) error {
	return &Error{Op: op, Index: index, Err: kind}
}

func slotError(op string, s slot, kind error) error {
	return &Error{Op: op, Index: s.index, Generation: s.generation, Keyed: s.keyed, Err: kind}
}

func opError(op string, kind error) error {
	return &Error{Op: op, Err: kind}
}
