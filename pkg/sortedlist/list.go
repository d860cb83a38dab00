package sortedlist

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// ErrOutOfRange is returned when an index falls outside [0, Len()).
var ErrOutOfRange = errors.New("index out of range")

// nilIndex marks the absence of a neighbour slot.
const nilIndex = -1

// Ordered is implemented by element types that carry their own ordering
// and equality. Ordering and equality are independent: two elements may
// compare as 0 without being Equal.
type Ordered[T any] interface {
	Compare(other T) int
	Equal(other T) bool
}

// List is a sorted doubly-linked list backed by an arena of slots.
//
// The zero value is an empty list. It is ready to use when T implements
// Ordered[T]; any other element type needs NewFunc, and inserting into a zero
// List of such a type panics.
type List[T any] struct {
	compare func(a, b T) int
	equal   func(a, b T) bool

	elems []T
	next  []int
	prev  []int
	free  []int

	head int
	tail int
	size int
}

// New creates an empty list for a self-ordering element type.
func New[T Ordered[T]]() *List[T] {
	return NewFunc(
		func(a, b T) int { return a.Compare(b) },
		func(a, b T) bool { return a.Equal(b) },
	)
}

// NewFunc creates an empty list ordered by compare, using equal for searches.
func NewFunc[T any](compare func(a, b T) int, equal func(a, b T) bool) *List[T] {
	return &List[T]{
		compare: compare,
		equal:   equal,
		head:    nilIndex,
		tail:    nilIndex,
	}
}

// Insert places v after every element less than or equal to it.
// It reports false, and leaves the list untouched, when v is nil.
func (l *List[T]) Insert(v T) bool {
	if isAbsent(v) {
		return false
	}

	l.ensureOrdering()
	slot := l.alloc(v)

	// First element strictly greater than v.
	at := l.front()
	for at != nilIndex && l.compare(l.elems[at], v) <= 0 {
		at = l.next[at]
	}

	if at == nilIndex {
		tail := l.back()
		l.prev[slot] = tail
		if tail != nilIndex {
			l.next[tail] = slot
		} else {
			l.head = slot
		}
		l.tail = slot
	} else {
		before := l.prev[at]
		l.prev[slot] = before
		l.next[slot] = at
		l.prev[at] = slot
		if before != nilIndex {
			l.next[before] = slot
		} else {
			l.head = slot
		}
	}

	l.size++
	return true
}

// Get returns the element at the zero-based index.
func (l *List[T]) Get(index int) (T, error) {
	slot, err := l.slotAt(index)
	if err != nil {
		var zero T
		return zero, err
	}
	return l.elems[slot], nil
}

// IndexOf returns the position of the first element equal to v, or -1.
func (l *List[T]) IndexOf(v T) int {
	return l.NextIndexOf(v, 0)
}

// NextIndexOf returns the position of the first element equal to v at or
// after start. It returns -1 when v is absent or start is outside [0, Len()).
func (l *List[T]) NextIndexOf(v T, start int) int {
	if isAbsent(v) || start < 0 || start >= l.size {
		return -1
	}
	i := 0
	for slot := l.front(); slot != nilIndex; slot = l.next[slot] {
		if i >= start && l.equal(l.elems[slot], v) {
			return i
		}
		i++
	}
	return -1
}

// Contains reports whether an element equal to v is present.
func (l *List[T]) Contains(v T) bool {
	return l.IndexOf(v) >= 0
}

// Remove deletes the first element equal to v and reports whether one was found.
func (l *List[T]) Remove(v T) bool {
	if isAbsent(v) {
		return false
	}
	for slot := l.front(); slot != nilIndex; slot = l.next[slot] {
		if l.equal(l.elems[slot], v) {
			l.unlink(slot)
			return true
		}
	}
	return false
}

// RemoveAt deletes and returns the element at the zero-based index.
func (l *List[T]) RemoveAt(index int) (T, error) {
	slot, err := l.slotAt(index)
	if err != nil {
		var zero T
		return zero, err
	}
	v := l.elems[slot]
	l.unlink(slot)
	return v, nil
}

// Len returns the number of stored elements.
func (l *List[T]) Len() int {
	return l.size
}

// Clear drops every element and releases the arena.
func (l *List[T]) Clear() {
	l.elems = nil
	l.next = nil
	l.prev = nil
	l.free = nil
	l.head = nilIndex
	l.tail = nilIndex
	l.size = 0
}

// All returns a front-to-back iterator. Each call starts a fresh traversal.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for slot := l.front(); slot != nilIndex; slot = l.next[slot] {
			if !yield(l.elems[slot]) {
				return
			}
		}
	}
}

// Backward returns a back-to-front iterator.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for slot := l.back(); slot != nilIndex; slot = l.prev[slot] {
			if !yield(l.elems[slot]) {
				return
			}
		}
	}
}

// Slice copies the elements, in order, into a new slice.
func (l *List[T]) Slice() []T {
	out := make([]T, 0, l.size)
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// Equal reports whether both lists hold pairwise-equal elements in the same order.
func (l *List[T]) Equal(other *List[T]) bool {
	if other == nil || l.size != other.size {
		return false
	}
	a, b := l.front(), other.front()
	for a != nilIndex {
		if !l.equal(l.elems[a], other.elems[b]) {
			return false
		}
		a, b = l.next[a], other.next[b]
	}
	return true
}

// String renders the elements as "[a, b, c]".
func (l *List[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for v := range l.All() {
		if !first {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, v)
		first = false
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *List[T]) slotAt(index int) (int, error) {
	if index < 0 || index >= l.size {
		return nilIndex, fmt.Errorf("%w: index %d, size %d", ErrOutOfRange, index, l.size)
	}
	slot := l.front()
	for i := 0; i < index; i++ {
		slot = l.next[slot]
	}
	return slot, nil
}

// front and back return the head and tail slots. An empty list, including the
// zero value whose head and tail are 0, reports nilIndex.
func (l *List[T]) front() int {
	if l.size == 0 {
		return nilIndex
	}
	return l.head
}

func (l *List[T]) back() int {
	if l.size == 0 {
		return nilIndex
	}
	return l.tail
}

// ensureOrdering fills in compare and equal for a zero List whose element
// type implements Ordered.
func (l *List[T]) ensureOrdering() {
	if l.compare != nil {
		return
	}
	var zero T
	if _, ok := any(zero).(Ordered[T]); !ok {
		panic(fmt.Sprintf("sortedlist: zero List[%T] needs NewFunc", zero))
	}
	l.compare = func(a, b T) int { return any(a).(Ordered[T]).Compare(b) }
	l.equal = func(a, b T) bool { return any(a).(Ordered[T]).Equal(b) }
}

// alloc stores v in a free or new slot with no neighbours.
func (l *List[T]) alloc(v T) int {
	if n := len(l.free); n > 0 {
		slot := l.free[n-1]
		l.free = l.free[:n-1]
		l.elems[slot] = v
		l.next[slot] = nilIndex
		l.prev[slot] = nilIndex
		return slot
	}
	l.elems = append(l.elems, v)
	l.next = append(l.next, nilIndex)
	l.prev = append(l.prev, nilIndex)
	return len(l.elems) - 1
}

func (l *List[T]) unlink(slot int) {
	before, after := l.prev[slot], l.next[slot]
	if before != nilIndex {
		l.next[before] = after
	} else {
		l.head = after
	}
	if after != nilIndex {
		l.prev[after] = before
	} else {
		l.tail = before
	}

	var zero T
	l.elems[slot] = zero
	l.next[slot] = nilIndex
	l.prev[slot] = nilIndex
	l.free = append(l.free, slot)
	l.size--
}

// isAbsent reports whether v is a nil pointer, interface, map, slice, func or chan.
func isAbsent[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
