package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
)

// Ring is a bounded double-ended queue over a Container. Items are kept in
// logical order head, head+1, ... (mod capacity) for Len() items; the tail
// slot is (head+size-1) mod capacity.
//
// The zero value is not usable; construct rings with NewRing, FromSlice or
// TryFromSlice. A Ring is not safe for concurrent use.
type Ring[T any] struct {
	head  int
	size  int
	store *Container[T]
}

// NewRing creates an empty ring with the given fixed capacity.
// It panics if capacity is not positive.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{store: NewContainer[T](capacity)}
}

// FromSlice builds a ring from the first capacity items. Extra items are
// dropped silently; use TryFromSlice when that must be an error.
func FromSlice[T any](capacity int, items []T) *Ring[T] {
	r := NewRing[T](capacity)
	if len(items) > capacity {
		items = items[:capacity]
	}
	for _, v := range items {
		r.PushBack(v)
	}
	return r
}

// TryFromSlice builds a ring holding all items or fails with ErrTooLarge.
func TryFromSlice[T any](capacity int, items []T) (*Ring[T], error) {
	if len(items) > capacity {
		return nil, fmt.Errorf("%w: %d items, capacity %d", ErrTooLarge, len(items), capacity)
	}
	return FromSlice(capacity, items), nil
}

// Len returns the number of items in the ring.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return r.store.Cap() }

func (r *Ring[T]) slot(offset int) int { return (r.head + offset) % r.store.Cap() }

func (r *Ring[T]) tail() int { return r.slot(r.size - 1) }

// PushBack appends v. When the ring is full the front (oldest) item is
// evicted. The returned pointer addresses the inserted slot.
func (r *Ring[T]) PushBack(v T) *T {
	i := r.slot(r.size)
	r.store.Set(i, v)
	if r.size == r.Cap() {
		r.head = r.slot(1)
	} else {
		r.size++
	}
	return r.store.Ref(i)
}

// PushFront prepends v. When the ring is full the back item is evicted.
func (r *Ring[T]) PushFront(v T) *T {
	c := r.Cap()
	r.head = (r.head + c - 1) % c
	if r.size < c {
		r.size++
	}
	r.store.Set(r.head, v)
	return r.store.Ref(r.head)
}

// TryPushBack appends v or fails with ErrFull.
func (r *Ring[T]) TryPushBack(v T) (*T, error) {
	if r.size == r.Cap() {
		return nil, ErrFull
	}
	return r.PushBack(v), nil
}

// TryPushFront prepends v or fails with ErrFull.
func (r *Ring[T]) TryPushFront(v T) (*T, error) {
	if r.size == r.Cap() {
		return nil, ErrFull
	}
	return r.PushFront(v), nil
}

// TryPopFront removes and returns the front item.
func (r *Ring[T]) TryPopFront() (T, error) {
	var zero T
	if r.size == 0 {
		return zero, ErrEmpty
	}
	v := r.store.Get(r.head)
	r.store.Set(r.head, zero)
	r.head = r.slot(1)
	r.size--
	return v, nil
}

// TryPopBack removes and returns the back item.
func (r *Ring[T]) TryPopBack() (T, error) {
	var zero T
	if r.size == 0 {
		return zero, ErrEmpty
	}
	t := r.tail()
	v := r.store.Get(t)
	r.store.Set(t, zero)
	r.size--
	return v, nil
}

// Front returns the front item without removing it.
func (r *Ring[T]) Front() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return r.store.Get(r.head), nil
}

// Back returns the back item without removing it.
func (r *Ring[T]) Back() (T, error) {
	if r.size == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return r.store.Get(r.tail()), nil
}

// All returns a lazy sequence over the items in logical order. The sequence
// can be ranged over any number of times; mutating the ring while ranging
// over it is not supported.
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < r.size; i++ {
			if !yield(r.store.Get(r.slot(i))) {
				return
			}
		}
	}
}

// Slice copies the items into a new slice in logical order.
func (r *Ring[T]) Slice() []T {
	out := make([]T, 0, r.size)
	for v := range r.All() {
		out = append(out, v)
	}
	return out
}

// IndexFunc returns the logical position of the first item satisfying f,
// or -1.
func (r *Ring[T]) IndexFunc(f func(T) bool) int {
	i := 0
	for v := range r.All() {
		if f(v) {
			return i
		}
		i++
	}
	return -1
}

// Extend pushes every value of seq to the back, evicting as PushBack does.
func (r *Ring[T]) Extend(seq iter.Seq[T]) {
	for v := range seq {
		r.PushBack(v)
	}
}

// Clear removes all items.
func (r *Ring[T]) Clear() {
	r.store.clear()
	r.head = 0
	r.size = 0
}

// MarshalJSON encodes the ring as an array in logical order.
func (r *Ring[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Slice())
}

// UnmarshalJSON restores the ring from an array. The receiver must have been
// created with a capacity; an array longer than it fails with ErrTooLarge and
// leaves the ring unchanged.
func (r *Ring[T]) UnmarshalJSON(data []byte) error {
	if r.store == nil {
		return errors.New("queue: cannot unmarshal into a ring without capacity")
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	if len(items) > r.Cap() {
		return fmt.Errorf("%w: %d items, capacity %d", ErrTooLarge, len(items), r.Cap())
	}

	r.Clear()
	for _, v := range items {
		r.PushBack(v)
	}

	return nil
}
