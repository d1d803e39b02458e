package refarena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// assertInvariants checks the arena's bookkeeping after a test step.
func assertInvariants[T any](t *testing.T, a *Arena[T]) {
	t.Helper()
	require.NoError(t, a.CheckInvariants())
}

// assertQuiet checks that nothing in the arena is borrowed.
func assertQuiet[T any](t *testing.T, a *Arena[T]) {
	t.Helper()
	require.Zero(t, a.ActiveCount(), "active count")
	for i := range a.cells {
		c := &a.cells[i]
		if !c.isFree() {
			require.Equal(t, refsUnborrowed, c.refs(), "refs of cell %d", i)
		}
	}
	assertInvariants(t, a)
}

// fill inserts vs in order and returns their keys.
func fill[T any](t *testing.T, a *Arena[T], vs ...T) []Key {
	t.Helper()
	keys := make([]Key, len(vs))
	for n, v := range vs {
		k, err := a.Insert(v)
		require.NoError(t, err)
		keys[n] = k
	}
	return keys
}

// requireKind checks that err is an *Error of the given kind for index.
func requireKind(t *testing.T, err error, kind error, index uint) *Error {
	t.Helper()
	require.ErrorIs(t, err, kind)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, index, e.Index, "index in %v", err)
	return e
}

func noop[T any](*T) error { return nil }
func noopMany[T any]([]*T) error { return nil }
