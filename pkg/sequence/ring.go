package sequence

import (
	"errors"
	"iter"
)

var (
	ErrRingFull  = errors.New("ring is full")
	ErrRingEmpty = errors.New("ring is empty")
)

// Ring is a fixed-capacity FIFO queue backed by a circular buffer. The zero
// value is not usable; create rings with NewRing.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends value at the tail.
func (r *Ring[T]) Push(value T) error {
	if r.size == len(r.items) {
		return ErrRingFull
	}
	r.items[(r.head+r.size)%len(r.items)] = value
	r.size++
	return nil
}

// Pop removes and returns the head.
func (r *Ring[T]) Pop() (T, error) {
	var zero T
	if r.size == 0 {
		return zero, ErrRingEmpty
	}
	value := r.items[r.head]
	r.items[r.head] = zero // drop the reference
	r.head = (r.head + 1) % len(r.items)
	r.size--
	return value, nil
}

// Rotate pops the head and pushes value in a single step, so the ring never
// has a length other than its current one. It fails on an empty ring.
func (r *Ring[T]) Rotate(value T) (T, error) {
	var zero T
	if r.size == 0 {
		return zero, ErrRingEmpty
	}
	old := r.items[r.head]
	if r.size == len(r.items) {
		// Full: the vacated head slot is the new tail.
		r.items[r.head] = value
		r.head = (r.head + 1) % len(r.items)
		return old, nil
	}
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.items[(r.head+r.size-1)%len(r.items)] = value
	return old, nil
}

func (r *Ring[T]) Peek() (T, bool) {
	if r.size == 0 {
		var zero T
		return zero, false
	}
	return r.items[r.head], true
}

// At returns the i-th element counted from the head.
func (r *Ring[T]) At(i int) (T, bool) {
	if i < 0 || i >= r.size {
		var zero T
		return zero, false
	}
	return r.items[(r.head+i)%len(r.items)], true
}

// All iterates from head to tail.
func (r *Ring[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < r.size; i++ {
			if !yield(i, r.items[(r.head+i)%len(r.items)]) {
				return
			}
		}
	}
}

// Drain pops every element in FIFO order.
func (r *Ring[T]) Drain() []T {
	out := make([]T, 0, r.size)
	for r.size > 0 {
		v, _ := r.Pop()
		out = append(out, v)
	}
	return out
}

func (r *Ring[T]) Len() int {
	return r.size
}

func (r *Ring[T]) Cap() int {
	return len(r.items)
}

func (r *Ring[T]) IsEmpty() bool {
	return r.size == 0
}

func (r *Ring[T]) IsFull() bool {
	return r.size == len(r.items)
}
