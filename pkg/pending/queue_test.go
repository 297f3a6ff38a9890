package pending

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_FIFOOrder(t *testing.T) {
	q := New[string]()
	q.Enqueue("A")
	q.Enqueue("B")
	q.Enqueue("C")

	var got []string
	forwarded, failed := q.Drain(func(e string) error {
		got = append(got, e)
		return nil
	})

	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Equal(t, 3, forwarded)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ReentrantEnqueueDrainedInSamePass(t *testing.T) {
	q := New[string]()
	q.Enqueue("A")
	q.Enqueue("B")
	q.Enqueue("C")

	var got []string
	q.Drain(func(e string) error {
		got = append(got, e)
		if e == "A" {
			// Forwarding A triggers another enqueue on the same queue.
			q.Enqueue("D")
		}
		return nil
	})

	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_SinkErrorsDoNotStopDrain(t *testing.T) {
	q := New[int]()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)

	var got []int
	forwarded, failed := q.Drain(func(e int) error {
		got = append(got, e)
		if e == 2 {
			return errors.New("bus rejected")
		}
		return nil
	})

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 3, forwarded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, q.Len(), "failed entries are not requeued")
}

func TestQueue_NestedDrainIsNoOp(t *testing.T) {
	q := New[int]()
	q.Enqueue(1)
	q.Enqueue(2)

	var got []int
	q.Drain(func(e int) error {
		got = append(got, e)
		inner, _ := q.Drain(func(int) error { return nil })
		assert.Zero(t, inner)
		return nil
	})

	assert.Equal(t, []int{1, 2}, got)
}

func TestQueue_DrainEmpty(t *testing.T) {
	q := New[int]()
	forwarded, failed := q.Drain(func(int) error { return nil })
	assert.Zero(t, forwarded)
	assert.Zero(t, failed)
}
