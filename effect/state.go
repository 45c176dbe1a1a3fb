package effect

// Timer is the two-state glitch countdown.
type Timer struct {
	Active    bool
	Remaining int
}

// Trigger activates the timer for n ticks.
func (t *Timer) Trigger(n int) {
	t.Active = n > 0
	t.Remaining = n
}

// Tick decrements the countdown and deactivates the timer when it expires.
func (t *Timer) Tick() {
	if t.Remaining > 0 {
		t.Remaining--
	}
	if t.Remaining == 0 {
		t.Active = false
	}
}

// Queue is a bounded FIFO. Pushing into a full queue evicts the oldest entry.
type Queue[T any] struct {
	items    []T
	capacity int
	evicted  uint64
}

// NewQueue creates a queue holding at most capacity entries.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push appends v, evicting the oldest entry when the queue is full.
func (q *Queue[T]) Push(v T) {
	if len(q.items) >= q.capacity {
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.evicted++
	}
	q.items = append(q.items, v)
}

// Len returns the number of queued entries.
func (q *Queue[T]) Len() int { return len(q.items) }

// Cap returns the maximum number of entries.
func (q *Queue[T]) Cap() int { return q.capacity }

// Evicted returns how many entries were pushed out by newer ones.
func (q *Queue[T]) Evicted() uint64 { return q.evicted }

// At returns the i-th entry, 0 being the oldest.
func (q *Queue[T]) At(i int) T { return q.items[i] }

// Each calls fn for every entry from the oldest to the newest.
func (q *Queue[T]) Each(fn func(*T)) {
	for i := range q.items {
		fn(&q.items[i])
	}
}

// Retain keeps only the entries for which keep reports true, in order.
func (q *Queue[T]) Retain(keep func(*T) bool) {
	n := 0
	for i := range q.items {
		if keep(&q.items[i]) {
			q.items[n] = q.items[i]
			n++
		}
	}
	clear(q.items[n:])
	q.items = q.items[:n]
}

// Shockwave is an expanding ring spawned by strong local motion.
type Shockwave struct {
	X, Y   float64
	Radius float64
	Alpha  float64
}

// GhostMark is a drifting artifact left behind by motion in chaos mode.
type GhostMark struct {
	X, Y  float64
	Alpha float64
}
