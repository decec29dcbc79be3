package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/sessionflow/internal/engine"
	"github.com/petrijr/sessionflow/internal/taskqueue"
	"github.com/petrijr/sessionflow/pkg/api"
)

// Worker pulls tasks from a Queue and runs them through an Executor.
type Worker struct {
	exec     *engine.Executor
	registry *engine.Registry
	queue    taskqueue.Queue
	logger   *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger used for task outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a new Worker.
func New(exec *engine.Executor, registry *engine.Registry, queue taskqueue.Queue, opts ...Option) *Worker {
	w := &Worker{
		exec:     exec,
		registry: registry,
		queue:    queue,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// EnqueueAction queues action for later execution and returns the task ID.
// Unknown actions are rejected here rather than when the task is processed.
func (w *Worker) EnqueueAction(ctx context.Context, action string) (string, error) {
	if _, err := w.registry.Get(action); err != nil {
		return "", err
	}
	t := taskqueue.Task{
		ID:     uuid.NewString(),
		Action: action,
	}
	if err := w.queue.Enqueue(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// ProcessOne pulls a single task from the queue and runs it.
// Returns (processed, error):
//   - processed == false: no task was obtained (ctx ended or dequeue failed).
//   - processed == true: a task ran; err is the workflow's error, if any.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	wf, err := w.registry.Get(task.Action)
	if err != nil {
		return true, err
	}

	for {
		if err := w.exec.WaitContext(ctx); err != nil {
			w.logger.Warn("queued_action_dropped",
				slog.String("task_id", task.ID),
				slog.String("action", task.Action),
				slog.Duration("queued", time.Since(task.EnqueuedAt)),
			)
			return true, err
		}
		run, err := w.exec.Execute(ctx, task.Action, wf)
		if errors.Is(err, api.ErrBusy) {
			// Someone triggered directly between Wait and Execute.
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			continue
		}
		w.logger.Debug("task_processed",
			slog.String("task_id", task.ID),
			slog.String("action", task.Action),
			slog.Duration("queued", time.Since(task.EnqueuedAt)),
			slog.String("run_id", runID(run)),
			slog.Any("error", err),
		)
		return true, err
	}
}

// Run processes tasks until ctx ends. Workflow failures are already
// surfaced to the user as alerts, so they do not stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.ProcessOne(ctx)
		if !processed {
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

func runID(r *api.Run) string {
	if r == nil {
		return ""
	}
	return r.ID
}
