package queue

import "fmt"

// Container is fixed-slot storage addressed by a small integer index. The
// slot count is fixed when the container is created.
type Container[T any] struct {
	slots []T
}

// NewContainer allocates a container with n zero-valued slots.
func NewContainer[T any](n int) *Container[T] {
	if n < 1 {
		panic(fmt.Sprintf("queue: container capacity must be positive, got %d", n))
	}
	return &Container[T]{slots: make([]T, n)}
}

// Cap returns the number of slots.
func (c *Container[T]) Cap() int { return len(c.slots) }

// Get returns the value stored at slot i.
func (c *Container[T]) Get(i int) T { return c.slots[i] }

// Set overwrites slot i.
func (c *Container[T]) Set(i int, v T) { c.slots[i] = v }

// Ref returns a pointer to slot i. The pointer stays valid until the slot is
// overwritten.
func (c *Container[T]) Ref(i int) *T { return &c.slots[i] }

// clear zeroes every slot so evicted values are not retained.
func (c *Container[T]) clear() {
	var zero T
	for i := range c.slots {
		c.slots[i] = zero
	}
}
