package types

import (
	"fmt"
	"iter"
	"strings"
)

// none marks a missing link. Slot 0 of the arena is never handed out, so
// the zero value of a List (head == tail == none) is an empty list.
const none = 0

type node[T comparable] struct {
	value T
	prev  int
	next  int
}

// List is a doubly linked list. Nodes live in an arena owned by the list and
// link to each other by index; released slots are recycled by later pushes.
//
// The zero value for List is an empty list ready to use. A List is not safe
// for concurrent use.
type List[T comparable] struct {
	nodes []node[T]
	free  []int
	head  int
	tail  int
	size  int
}

func New[T comparable]() *List[T] {
	return &List[T]{}
}

// From returns a list holding a copy of each of values, in the same order.
func From[T comparable](values ...T) *List[T] {
	l := New[T]()
	for _, v := range values {
		l.PushBack(v)
	}
	return l
}

// Clone returns a deep copy of l that shares no nodes with it.
func (l *List[T]) Clone() *List[T] {
	c := New[T]()
	for i := l.head; i != none; i = l.nodes[i].next {
		c.PushBack(l.nodes[i].value)
	}
	return c
}

func (l *List[T]) alloc(v T) int {
	if n := len(l.free); n > 0 {
		i := l.free[n-1]
		l.free = l.free[:n-1]
		l.nodes[i] = node[T]{value: v}
		return i
	}
	if len(l.nodes) == 0 {
		l.nodes = append(l.nodes, node[T]{})
	}
	l.nodes = append(l.nodes, node[T]{value: v})
	return len(l.nodes) - 1
}

// release zeroes slot i so its value can be collected and recycles the slot.
func (l *List[T]) release(i int) {
	l.nodes[i] = node[T]{}
	l.free = append(l.free, i)
}

// unlink detaches node i from the chain and releases it.
func (l *List[T]) unlink(i int) {
	n := l.nodes[i]
	if n.prev != none {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != none {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.release(i)
	l.size--
}

func (l *List[T]) Len() int {
	return l.size
}

func (l *List[T]) Empty() bool {
	return l.size == 0
}

// Front returns the first value of l or ErrEmptyCollection.
func (l *List[T]) Front() (T, error) {
	if l.head == none {
		var zero T
		return zero, ErrEmptyCollection
	}
	return l.nodes[l.head].value, nil
}

// Back returns the last value of l or ErrEmptyCollection.
func (l *List[T]) Back() (T, error) {
	if l.tail == none {
		var zero T
		return zero, ErrEmptyCollection
	}
	return l.nodes[l.tail].value, nil
}

// PushBack appends a copy of v - O(1)
func (l *List[T]) PushBack(v T) {
	i := l.alloc(v)
	if l.tail == none {
		l.head = i
		l.tail = i
	} else {
		l.nodes[i].prev = l.tail
		l.nodes[l.tail].next = i
		l.tail = i
	}
	l.size++
}

// PushFront prepends a copy of v - O(1)
func (l *List[T]) PushFront(v T) {
	i := l.alloc(v)
	if l.head == none {
		l.head = i
		l.tail = i
	} else {
		l.nodes[i].next = l.head
		l.nodes[l.head].prev = i
		l.head = i
	}
	l.size++
}

// PopFront removes the first element and returns its value. It reports false
// and leaves l untouched when l is empty.
func (l *List[T]) PopFront() (T, bool) {
	if l.head == none {
		var zero T
		return zero, false
	}
	v := l.nodes[l.head].value
	l.unlink(l.head)
	return v, true
}

// PopBack removes the last element and returns its value. It reports false
// and leaves l untouched when l is empty.
func (l *List[T]) PopBack() (T, bool) {
	if l.tail == none {
		var zero T
		return zero, false
	}
	v := l.nodes[l.tail].value
	l.unlink(l.tail)
	return v, true
}

// Remove drops every element equal to v and returns how many were dropped.
func (l *List[T]) Remove(v T) int {
	removed := 0
	for i := l.head; i != none; {
		next := l.nodes[i].next
		if l.nodes[i].value == v {
			l.unlink(i)
			removed++
		}
		i = next
	}
	return removed
}

// Unique keeps the first occurrence of every value and drops all later
// elements equal to it, adjacent or not. It returns how many were dropped.
func (l *List[T]) Unique() int {
	removed := 0
	for out := l.head; out != none; out = l.nodes[out].next {
		for in := l.nodes[out].next; in != none; {
			next := l.nodes[in].next
			if l.nodes[in].value == l.nodes[out].value {
				l.unlink(in)
				removed++
			}
			in = next
		}
	}
	return removed
}

// Reverse swaps values pairwise from both ends towards the middle. Links are
// left as they are.
func (l *List[T]) Reverse() {
	fwd, bwd := l.head, l.tail
	for k := l.size / 2; k > 0; k-- {
		l.nodes[fwd].value, l.nodes[bwd].value = l.nodes[bwd].value, l.nodes[fwd].value
		fwd = l.nodes[fwd].next
		bwd = l.nodes[bwd].prev
	}
}

// Resize drops elements from the back until l holds at most n of them.
// A negative n empties the list.
func (l *List[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	for l.size > n {
		l.PopBack()
	}
}

// ResizeWith is Resize that also grows l to n elements with copies of fill.
func (l *List[T]) ResizeWith(n int, fill T) {
	l.Resize(n)
	for l.size < n {
		l.PushBack(fill)
	}
}

func (l *List[T]) Clear() {
	l.nodes = nil
	l.free = nil
	l.head = none
	l.tail = none
	l.size = 0
}

// Assign makes l hold exactly values. Existing nodes are overwritten in
// place, surplus ones are dropped from the back and missing ones appended.
func (l *List[T]) Assign(values ...T) {
	if len(values) < l.size {
		l.Resize(len(values))
	}
	i := l.head
	for _, v := range values {
		if i != none {
			l.nodes[i].value = v
			i = l.nodes[i].next
		} else {
			l.PushBack(v)
		}
	}
}

// AssignList is Assign with the values of another list. A nil other is an
// empty list.
func (l *List[T]) AssignList(other *List[T]) {
	if other == l {
		return
	}
	if other == nil {
		l.Clear()
		return
	}
	if other.size < l.size {
		l.Resize(other.size)
	}
	i := l.head
	for j := other.head; j != none; j = other.nodes[j].next {
		if i != none {
			l.nodes[i].value = other.nodes[j].value
			i = l.nodes[i].next
		} else {
			l.PushBack(other.nodes[j].value)
		}
	}
}

// Equal reports whether l and other hold equal values in the same order.
func (l *List[T]) Equal(other *List[T]) bool {
	if other == nil {
		return l.size == 0
	}
	if l.size != other.size {
		return false
	}
	for a, b := l.head, other.head; a != none; a, b = l.nodes[a].next, other.nodes[b].next {
		if l.nodes[a].value != other.nodes[b].value {
			return false
		}
	}
	return true
}

// Values returns the elements of l front to back.
func (l *List[T]) Values() []T {
	result := make([]T, 0, l.size)
	for i := l.head; i != none; i = l.nodes[i].next {
		result = append(result, l.nodes[i].value)
	}
	return result
}

// All iterates over the values front to back. l must not be modified while
// iterating.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := l.head; i != none; i = l.nodes[i].next {
			if !yield(l.nodes[i].value) {
				return
			}
		}
	}
}

// Backward iterates over the values back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := l.tail; i != none; i = l.nodes[i].prev {
			if !yield(l.nodes[i].value) {
				return
			}
		}
	}
}

// Render writes l as [e1, e2, ...] using fn to format each element.
func (l *List[T]) Render(fn func(T) string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := l.head; i != none; i = l.nodes[i].next {
		b.WriteString(fn(l.nodes[i].value))
		if l.nodes[i].next != none {
			b.WriteString(", ")
		}
	}
	b.WriteByte(']')
	return b.String()
}

// String renders l as [e1, e2, ...] with the default fmt formatting.
func (l *List[T]) String() string {
	return l.Render(func(v T) string {
		return fmt.Sprint(v)
	})
}
