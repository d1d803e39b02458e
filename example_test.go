package refarena

import (
	"errors"
	"fmt"
	"strings"
)

// Example demonstrates basic arena usage
func Example() {
	a := New[string]()

	// Insert returns a key that stays valid until the element is removed
	hello, _ := a.Insert("Hello, ")
	world, _ := a.Insert("World!")

	// Mutate one element in place
	_ = a.VisitExclusive(world, func(s *string) error {
		*s = "Gophers!"
		return nil
	})

	// Read several elements at once
	_ = a.VisitManyShared([]Key{hello, world}, func(vs []*string) error {
		var sb strings.Builder
		for _, v := range vs {
			sb.WriteString(*v)
		}
		fmt.Println(sb.String())
		return nil
	})

	// Removing an element makes its key stale
	v, _ := a.Remove(hello)
	fmt.Printf("Removed %q\n", v)
	fmt.Printf("Contains removed key: %v\n", a.Contains(hello))

	// Output:
	// Hello, Gophers!
	// Removed "Hello, "
	// Contains removed key: false
}

type node struct {
	name  string
	edges []Key
	seen  int
}

// Example_graph links nodes by key, including a cycle, and walks them with
// nested exclusive borrows.
func Example_graph() {
	a := NewWithCapacity[node](8)
	x, _ := a.Insert(node{name: "x"})
	y, _ := a.Insert(node{name: "y"})
	z, _ := a.Insert(node{name: "z"})

	// x -> y -> z -> x
	link := func(from, to Key) {
		_ = a.VisitExclusive(from, func(n *node) error {
			n.edges = append(n.edges, to)
			return nil
		})
	}
	link(x, y)
	link(y, z)
	link(z, x)

	// Hold x while visiting its neighbours; each neighbour is a separate cell
	var walk func(k Key, depth int) error
	walk = func(k Key, depth int) error {
		return a.VisitExclusive(k, func(n *node) error {
			n.seen++
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.name)
			for _, e := range n.edges {
				err := walk(e, depth+1)
				if errors.Is(err, ErrAlreadyExclusive) {
					fmt.Printf("%s(cycle)\n", strings.Repeat("  ", depth+1))
					continue
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	_ = walk(x, 0)
	fmt.Printf("Borrowed after walk: %d\n", a.ActiveCount())

	// Output:
	// x
	//   y
	//     z
	//       (cycle)
	// Borrowed after walk: 0
}

// ExampleArena_BorrowExclusive shows a guard standing in for a visitor.
func ExampleArena_BorrowExclusive() {
	a := New[int]()
	k, _ := a.Insert(1)

	g, err := a.BorrowExclusive(k)
	if err != nil {
		fmt.Println(err)
		return
	}
	*g.Value() += 41

	// The element cannot be removed while the guard is held
	_, err = a.Remove(k)
	fmt.Println(err)

	_ = g.Release()
	v, _ := a.Remove(k)
	fmt.Println(v)

	// Output:
	// refarena: remove key {0 0}: remove while borrowed
	// 42
}

// ExampleArena_InsertAt shows inserting while another element is borrowed.
func ExampleArena_InsertAt() {
	a := NewWithCapacity[string](2)
	first, _ := a.Insert("first")
	_, _ = a.Insert("second")

	_ = a.VisitShared(first, func(*string) error {
		// Storage is full, so appending would move borrowed values
		_, err := a.Insert("third")
		fmt.Println(err)

		// Reusing a freed cell never moves anything
		_, _ = a.RemoveAt(1)
		k, _ := a.InsertAt(1, "third")
		fmt.Println(k)
		return nil
	})

	// Output:
	// refarena: insert: insert at capacity while borrowed
	// {1 1}
}

// ExampleArena_Reset demonstrates clearing the arena for reuse
func ExampleArena_Reset() {
	a := NewWithCapacity[int](4)
	k, _ := a.Insert(1)
	_, _ = a.Insert(2)

	_ = a.Reset()
	fmt.Printf("Stored after reset: %d\n", a.StoredCount())
	fmt.Printf("Capacity kept: %d\n", a.Capacity())
	fmt.Printf("Old key current: %v\n", a.Contains(k))

	k2, _ := a.Insert(3)
	fmt.Printf("New key: %v\n", k2)

	// Output:
	// Stored after reset: 0
	// Capacity kept: 4
	// Old key current: false
	// New key: {0 1}
}

// ExampleArena_Metrics demonstrates arena statistics
func ExampleArena_Metrics() {
	a := NewWithCapacity[int](8)
	for i := 0; i < 4; i++ {
		_, _ = a.Insert(i)
	}
	_, _ = a.RemoveAt(2)

	m := a.Metrics()
	fmt.Printf("Stored: %d\n", m.Stored)
	fmt.Printf("Capacity: %d\n", m.Capacity)
	fmt.Printf("Occupied: %d\n", m.Occupied)
	fmt.Printf("Free: %d\n", m.Free)
	fmt.Printf("Density: %.2f\n", m.Density)

	// Output:
	// Stored: 4
	// Capacity: 8
	// Occupied: 3
	// Free: 1
	// Density: 0.75
}

// ExampleSingle demonstrates the keyless single-value container
func ExampleSingle() {
	s := NewSingle([]string{"a"})

	_ = s.VisitExclusive(func(v *[]string) error {
		*v = append(*v, "b")
		return nil
	})

	g, _ := s.BorrowShared()
	_, err := s.Replace(nil)
	fmt.Println(errors.Is(err, ErrOverwriteBorrowed))
	_ = g.Release()

	old, _ := s.Replace([]string{"c"})
	fmt.Println(old, s.CloneOut())

	// Output:
	// true
	// [a b] [c]
}
