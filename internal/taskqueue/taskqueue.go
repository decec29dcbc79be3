package taskqueue

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned when an action is triggered while the queue is
// at capacity.
var ErrQueueFull = errors.New("action queue is full")

// Task is one triggered action waiting for the worker.
type Task struct {
	ID     string
	Action string

	EnqueuedAt time.Time
}

// Queue is a FIFO of triggered actions.
type Queue interface {
	// Enqueue adds t without waiting for room. A full queue yields
	// ErrQueueFull.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue removes and returns the next task, blocking until one is
	// available or ctx ends.
	Dequeue(ctx context.Context) (*Task, error)

	// Drain removes and returns every queued task.
	Drain() []Task

	// Len returns the approximate number of tasks queued.
	Len() int
}
