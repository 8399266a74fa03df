package history

// Ring is a fixed-capacity circular buffer. Pushing into a full ring
// overwrites the oldest entry. Not safe for concurrent use.
type Ring[T any] struct {
	data  []T
	head  int // next write position
	count int
}

// NewRing creates a ring holding at most capacity items.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Push adds item. When the ring was full it returns the evicted oldest item.
func (r *Ring[T]) Push(item T) (evicted T, ok bool) {
	if r.count == len(r.data) {
		evicted, ok = r.data[r.head], true
	} else {
		r.count++
	}
	r.data[r.head] = item
	r.head = (r.head + 1) % len(r.data)
	return evicted, ok
}

// Newest returns the most recently pushed item.
func (r *Ring[T]) Newest() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.data[r.index(0)], true
}

// At returns the i-th item counting back from the newest (0 = newest).
func (r *Ring[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= r.count {
		return zero, false
	}
	return r.data[r.index(i)], true
}

// NewestFirst copies the items out, newest first.
func (r *Ring[T]) NewestFirst() []T {
	out := make([]T, r.count)
	for i := range out {
		out[i] = r.data[r.index(i)]
	}
	return out
}

// Len returns the number of stored items.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.data) }

func (r *Ring[T]) index(back int) int {
	n := len(r.data)
	return ((r.head-1-back)%n + n) % n
}
