// Package sortedlist provides a generic list that keeps its elements in
// ascending order under insertion and removal.
//
// Invariants:
// - Adjacent elements e_i, e_i+1 always satisfy e_i <= e_i+1.
// - Absent (nil) elements are never stored.
// - Equal elements keep their insertion order: a new element lands after every
//   element it compares equal to.
//
// Storage is an index-based arena: element slots plus parallel next/prev index
// slices. Removed slots are recycled through a free list.
//
// Usage:
//
//	l := sortedlist.NewFunc(cmp.Compare[int], func(a, b int) bool { return a == b })
//	l.Insert(3)
//	l.Insert(1)
//	for v := range l.All() {
//		fmt.Println(v)
//	}
//
// A List is not safe for concurrent use.
package sortedlist
