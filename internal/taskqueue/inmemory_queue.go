package taskqueue

import (
	"context"
	"time"
)

// DefaultCapacity is used when a queue is created with a non-positive size.
const DefaultCapacity = 64

// InMemoryQueue is a Queue over a buffered channel. It is safe for
// concurrent use.
type InMemoryQueue struct {
	ch  chan Task
	now func() time.Time
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue returns a queue holding at most capacity actions.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryQueue{
		ch:  make(chan Task, capacity),
		now: time.Now,
	}
}

// Enqueue stamps t with its enqueue time unless already set.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = q.now()
	}
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until a task is available. Once ctx has ended it never
// hands out a task, even if one is waiting.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case t := <-q.ch:
		return &t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *InMemoryQueue) Drain() []Task {
	var out []Task
	for {
		select {
		case t := <-q.ch:
			out = append(out, t)
		default:
			return out
		}
	}
}

func (q *InMemoryQueue) Len() int {
	return len(q.ch)
}
