package refarena_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/refarena"
)

// TestScenarios walks through the arena's contract end to end, each case on
// a fresh arena, using only the exported API.
func TestScenarios(t *testing.T) {
	t.Run("InsertVisitMutate", func(t *testing.T) {
		a := refarena.New[string]()
		_, err := a.Insert("Hello, ")
		require.NoError(t, err)
		_, err = a.Insert("World!")
		require.NoError(t, err)

		err = a.VisitExclusiveAt(1, func(v *string) error {
			*v = "Gopher"
			return nil
		})
		require.NoError(t, err)

		var joined string
		err = a.VisitManySharedAt([]uint{0, 1}, func(vs []*string) error {
			var sb strings.Builder
			for _, v := range vs {
				sb.WriteString(*v)
			}
			joined = sb.String()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello, Gopher", joined)
	})

	t.Run("BorrowAliasing", func(t *testing.T) {
		a := refarena.NewWithCapacity[int](2)
		key0, err := a.Insert(1)
		require.NoError(t, err)
		_, err = a.Insert(2)
		require.NoError(t, err)

		g, err := a.BorrowExclusive(key0)
		require.NoError(t, err)

		_, err = a.BorrowExclusive(key0)
		require.ErrorIs(t, err, refarena.ErrAlreadyExclusive)
		_, err = a.BorrowSharedAt(0)
		require.ErrorIs(t, err, refarena.ErrAlreadyExclusive)

		require.NoError(t, g.Release())
		g, err = a.BorrowExclusive(key0)
		require.NoError(t, err)
		require.NoError(t, g.Release())
	})

	t.Run("StructuralGuardrails", func(t *testing.T) {
		a := refarena.NewWithCapacity[int](5)
		for i := 0; i < 5; i++ {
			_, err := a.Insert(i)
			require.NoError(t, err)
		}

		err := a.VisitSharedAt(3, func(*int) error {
			if _, err := a.RemoveAt(4); err != nil {
				return err
			}
			k, err := a.Insert(40)
			if err != nil {
				return err
			}
			assert.Equal(t, uint(4), k.Index, "insert fills the new hole")
			_, err = a.Insert(50)
			return err
		})
		require.ErrorIs(t, err, refarena.ErrInsertWhileBorrowed)
		assert.Equal(t, 5, a.Capacity(), "storage did not move")
		assert.Zero(t, a.ActiveCount())
	})

	t.Run("GenerationDiscipline", func(t *testing.T) {
		a := refarena.New[string]()
		ka, err := a.Insert("a")
		require.NoError(t, err)
		require.Equal(t, refarena.Key{Index: 0, Generation: 0}, ka)

		_, err = a.Remove(ka)
		require.NoError(t, err)
		kb, err := a.Insert("b")
		require.NoError(t, err)
		require.Equal(t, refarena.Key{Index: 0, Generation: 1}, kb)

		err = a.VisitShared(ka, func(*string) error { return nil })
		require.ErrorIs(t, err, refarena.ErrStale)
		var e *refarena.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, uint(0), e.Index)
		assert.Equal(t, uint(0), e.Generation)

		require.NoError(t, a.VisitShared(kb, func(*string) error { return nil }))
	})

	t.Run("FreeListThreading", func(t *testing.T) {
		a := refarena.New[string]()
		var keys []refarena.Key
		for _, v := range []string{"a", "b", "c"} {
			k, err := a.Insert(v)
			require.NoError(t, err)
			keys = append(keys, k)
		}
		for _, k := range keys {
			_, err := a.Remove(k)
			require.NoError(t, err)
		}

		kd, err := a.Insert("d")
		require.NoError(t, err)
		assert.Equal(t, uint(2), kd.Index)

		_, err = a.InsertAt(0, "e")
		require.NoError(t, err)
		require.NoError(t, a.CheckInvariants())
		assert.Equal(t, 1, a.FreeCount())

		kf, err := a.Insert("f")
		require.NoError(t, err)
		assert.Equal(t, uint(1), kf.Index, "index 1 is all that is left on the free list")
	})

	t.Run("PartialAcquireRollback", func(t *testing.T) {
		a := refarena.New[int]()
		var keys []refarena.Key
		for i := 0; i < 4; i++ {
			k, err := a.Insert(i)
			require.NoError(t, err)
			keys = append(keys, k)
		}
		_, err := a.Remove(keys[1])
		require.NoError(t, err)

		err = a.VisitManyExclusive([]refarena.Key{keys[2], keys[3], keys[1]}, func([]*int) error { return nil })
		require.ErrorIs(t, err, refarena.ErrStale)
		var e *refarena.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, uint(1), e.Index)

		assert.Zero(t, a.ActiveCount())
		require.NoError(t, a.CheckInvariants())
		for _, k := range keys[2:] {
			g, err := a.BorrowExclusive(k)
			require.NoError(t, err, "key %v must be unborrowed", k)
			require.NoError(t, g.Release())
		}
	})
}
