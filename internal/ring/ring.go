// Package ring implements the fixed-capacity circular store that backs every
// bounded buffer strategy.
//
// Store is deliberately not thread-safe: it is owned by exactly one
// synchronization wrapper which serializes all access to it.
package ring

// Store is a FIFO circular store with a fixed capacity.
type Store[T any] struct {
	data []T
	// head is the index of the next element to remove.
	head int
	// tail is the index of the next free slot.
	tail int
	size int
}

// New creates a store holding at most capacity elements.
// It panics if capacity is less than 1.
func New[T any](capacity int) *Store[T] {
	if capacity < 1 {
		panic("ring: capacity must be at least 1")
	}
	return &Store[T]{data: make([]T, capacity)}
}

// Push appends v. It returns false, leaving the store untouched, if the store is full.
func (s *Store[T]) Push(v T) bool {
	if s.size == len(s.data) {
		return false
	}
	s.data[s.tail] = v
	s.tail = (s.tail + 1) % len(s.data)
	s.size++
	return true
}

// Pop removes and returns the oldest element. ok is false if the store is empty.
func (s *Store[T]) Pop() (v T, ok bool) {
	if s.size == 0 {
		return v, false
	}
	v = s.data[s.head]
	var zero T
	// Drop the reference so the store does not keep extracted values alive.
	s.data[s.head] = zero
	s.head = (s.head + 1) % len(s.data)
	s.size--
	return v, true
}

// Len returns the number of stored elements.
func (s *Store[T]) Len() int { return s.size }

// Cap returns the fixed capacity.
func (s *Store[T]) Cap() int { return len(s.data) }

// Full reports whether Len() == Cap().
func (s *Store[T]) Full() bool { return s.size == len(s.data) }

// Empty reports whether Len() == 0.
func (s *Store[T]) Empty() bool { return s.size == 0 }
