package refarena

import (
	"fmt"
	"log/slog"
)

// BugPolicy decides what happens when the arena catches itself breaking one
// of its own invariants, such as a corrupted free list or a release with no
// matching borrow. These conditions are unreachable unless refarena has a
// bug; none of the arena's guarantees depend on which policy is selected.
//
// The default comes from build tags:
//
//	(none)               BugReturn
//	refarena_bugpanic    BugPanic
//	refarena_unchecked   BugUnchecked
type BugPolicy uint8

const (
	// BugReturn logs the violation and returns an error wrapping ErrInternal.
	BugReturn BugPolicy = iota
	// BugPanic logs the violation and panics.
	BugPanic
	// BugUnchecked ignores the violation and carries on as if the check had
	// passed. Only for builds that have been tested under BugReturn.
	BugUnchecked
)

func (p BugPolicy) String() string {
	switch p {
	case BugReturn:
		return "return"
	case BugPanic:
		return "panic"
	case BugUnchecked:
		return "unchecked"
	}
	return fmt.Sprintf("BugPolicy(%d)", uint8(p))
}

// bug reports an internal invariant violation according to the configured
// policy. A nil result means the caller should proceed.
func (c *config) bug(op string, index uint, format string, args ...any) error {
	if c.policy == BugUnchecked {
		return nil
	}
	err := &Error{Op: op, Index: index, Err: ErrInternal, Detail: fmt.Sprintf(format, args...)}
	c.logger.Error("refarena: internal invariant violated",
		slog.String("op", op),
		slog.Uint64("index", uint64(index)),
		slog.String("detail", err.Detail),
	)
	if c.policy == BugPanic {
		panic(err)
	}
	return err
}
