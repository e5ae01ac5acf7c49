// internal/ringbuf/ringbuf.go
package ringbuf

import (
	"fmt"
	"sync"
)

// Ring is a fixed-capacity circular queue with overwrite-oldest eviction.
//
// head is the next write index, tail the next read index, both in [0, N).
// Empty iff head == tail; full iff head+1 == tail (mod N). One slot is always
// left as a gap, so at most N-1 values are live.
//
// Every operation holds mu only across the index update and one value copy.
// It never allocates after New and never blocks beyond the lock.
type Ring[T any] struct {
	mu    sync.Mutex
	slots []T
	mask  int
	head  int
	tail  int
}

// New creates a ring with the given number of slots.
// slots must be a power of two and at least 2.
func New[T any](slots int) (*Ring[T], error) {
	if slots < 2 || slots&(slots-1) != 0 {
		return nil, fmt.Errorf("ringbuf: slots must be a power of two >= 2, got %d", slots)
	}
	return &Ring[T]{
		slots: make([]T, slots),
		mask:  slots - 1,
	}, nil
}

// Push stores v. When the ring is full the oldest value is discarded first.
// Push never fails; overwrote reports whether a value was discarded.
func (r *Ring[T]) Push(v T) (overwrote bool) {
	r.mu.Lock()
	next := (r.head + 1) & r.mask
	if next == r.tail {
		r.tail = (r.tail + 1) & r.mask
		overwrote = true
	}
	r.slots[r.head] = v
	r.head = next
	r.mu.Unlock()
	return overwrote
}

// Pop removes and returns the oldest value. ok is false when the ring is empty.
func (r *Ring[T]) Pop() (v T, ok bool) {
	r.mu.Lock()
	if r.head == r.tail {
		r.mu.Unlock()
		return v, false
	}
	v = r.slots[r.tail]
	r.tail = (r.tail + 1) & r.mask
	r.mu.Unlock()
	return v, true
}

// NotEmpty is a locked snapshot of emptiness. It does not consume anything.
func (r *Ring[T]) NotEmpty() bool {
	r.mu.Lock()
	ne := r.head != r.tail
	r.mu.Unlock()
	return ne
}

// Len returns the number of live values.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	n := (r.head - r.tail) & r.mask
	r.mu.Unlock()
	return n
}

// Cap returns the maximum number of live values (slots - 1).
func (r *Ring[T]) Cap() int { return r.mask }
