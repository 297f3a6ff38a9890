package pending

// Sink consumes one drained entry. Returning an error does not stop the
// drain pass; delivery is at-most-once and failed entries are not requeued.
type Sink[T any] func(entry T) error

// Queue buffers notification payloads created before their presentation
// surface became available. Entries are forwarded strictly in enqueue order
// and consumed exactly once.
//
// Queue is not safe for concurrent use; the owning service serializes access.
type Queue[T any] struct {
	entries  []T
	draining bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends an entry to the tail. Enqueueing from within a drain sink
// is allowed; the entry is forwarded in the same pass.
func (q *Queue[T]) Enqueue(entry T) {
	q.entries = append(q.entries, entry)
}

// Len returns the number of buffered entries.
func (q *Queue[T]) Len() int {
	return len(q.entries)
}

// Drain removes and forwards entries in FIFO order until the queue is empty,
// including entries enqueued by the sink itself during the pass. Sink errors
// are counted but never interrupt the pass. A nested Drain call from within
// the sink is a no-op; the outer pass already covers the new tail.
//
// It returns the number of forwarded entries and the number of sink failures.
func (q *Queue[T]) Drain(sink Sink[T]) (forwarded, failed int) {
	if q.draining || sink == nil {
		return 0, 0
	}
	q.draining = true
	defer func() { q.draining = false }()

	for len(q.entries) > 0 {
		entry := q.entries[0]
		q.entries = q.entries[1:]

		forwarded++
		if err := sink(entry); err != nil {
			failed++
		}
	}
	q.entries = nil
	return forwarded, failed
}
