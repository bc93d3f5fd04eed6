// Package pkg is a package that provides utilities for axegrind.
package pkg

// Stack is a small generic LIFO used to track nested execution contexts.
// It is not safe for concurrent use; a traversal owns exactly one stack.
type Stack[T any] struct {
	items []T
}

// NewStack creates an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Len returns the number of items on the stack.
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// Push places item on top of the stack.
func (s *Stack[T]) Push(item T) {
	s.items = append(s.items, item)
}

// Pop removes and returns the top item. The second return value is false
// when the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	top := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]

	return top, true
}

// Peek returns the top item without removing it. The second return value is
// false when the stack is empty.
func (s *Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}

	return s.items[len(s.items)-1], true
}

// Reset drops every item, returning the stack to its empty state.
func (s *Stack[T]) Reset() {
	var zero T
	for i := range s.items {
		s.items[i] = zero
	}

	s.items = s.items[:0]
}
