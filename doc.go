// Package refarena implements a generational arena with per-element,
// reference-counted borrowing.
//
// # Overview
//
// An Arena[T] owns a set of T values and hands out a Key for each one. Keys
// are plain values: store them in other elements to build graphs, including
// cyclic ones, without pointers between elements. To reach an element, ask
// the arena for a borrow:
//
//   - Shared borrows allow any number of concurrent readers.
//   - An exclusive borrow allows one writer and nothing else.
//
// The rule is enforced per element at run time. Borrowing one element does
// not lock the arena: while a visitor runs, it may insert, remove and borrow
// other elements through the same arena.
//
// # Basic Usage
//
//	a := refarena.New[Node]()
//
//	root, _ := a.Insert(Node{Name: "root"})
//	leaf, _ := a.Insert(Node{Name: "leaf", Parent: root})
//
//	// Closure-scoped access
//	err := a.VisitExclusive(root, func(n *Node) error {
//	    n.Children = append(n.Children, leaf)
//	    return nil
//	})
//
//	// Scope-bound access
//	g, err := a.BorrowShared(leaf)
//	if err != nil {
//	    return err
//	}
//	defer g.Release()
//	fmt.Println(g.Value().Name)
//
// # Keys and Generations
//
// A Key is an {Index, Generation} pair. Removing or overwriting an element
// makes its keys stale: the arena generation advances, so any later occupant
// of the same index gets a strictly greater generation. Operations on a stale
// key fail with ErrStale and never reach the newer occupant.
//
// Freed cells are reused most-recently-freed first. InsertAt and Overwrite
// can target a specific free cell.
//
// # Structural Safety
//
// Borrowed values live inside the arena's cell storage. The arena never
// moves that storage while anything is borrowed: an Insert that would have to
// grow full storage fails with ErrInsertWhileBorrowed instead. Use
// NewWithCapacity or EnsureCapacity to reserve room ahead of time. Borrowed
// elements cannot be removed or overwritten.
//
// # Errors
//
// No operation panics on misuse. Every failure is an *Error wrapping one of
// the Err* sentinels and leaves the arena unchanged. Visitor errors pass
// through unchanged, and the borrow is released on every exit path,
// including a panic.
//
// Internal invariant violations are handled according to BugPolicy, chosen
// with the refarena_bugpanic and refarena_unchecked build tags or with
// WithBugPolicy.
//
// # Thread Safety
//
// Arena and Single are not safe for concurrent use. Borrow checking guards
// against aliasing within one goroutine, not against data races.
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Density: %.2f%%\n", m.Density*100)
//	fmt.Printf("Borrowed: %d of %d\n", m.Active, m.Occupied)
package refarena
