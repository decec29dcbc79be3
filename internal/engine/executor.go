package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/sessionflow/pkg/api"
)

// DefaultAlertDelay lets a sheet finish closing before the alert appears.
const DefaultAlertDelay = 50 * time.Millisecond

// Executor runs one workflow at a time against a store and surfaces the
// outcome as an alert.
type Executor struct {
	store      api.Store
	observer   api.Observer
	logger     *slog.Logger
	alertDelay time.Duration

	mu     sync.Mutex
	busy   bool
	cancel context.CancelFunc
	idle   *sync.Cond
	// released is closed when the active run gives up the executor.
	released chan struct{}
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver sets the observer notified about runs and waits.
func WithObserver(obs api.Observer) Option {
	return func(e *Executor) {
		if obs != nil {
			e.observer = obs
		}
	}
}

// WithAlertDelay sets the pause between a workflow finishing and its
// alert being shown. Zero shows the alert immediately.
func WithAlertDelay(d time.Duration) Option {
	return func(e *Executor) {
		if d >= 0 {
			e.alertDelay = d
		}
	}
}

// WithLogger sets the logger used by the executor.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor returns an Executor bound to st.
func NewExecutor(st api.Store, opts ...Option) *Executor {
	e := &Executor{
		store:      st,
		observer:   api.NoopObserver{},
		logger:     slog.Default(),
		alertDelay: DefaultAlertDelay,
	}
	e.idle = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs wf to completion on the calling goroutine.
//
// If another workflow holds the executor, Execute returns api.ErrBusy
// without touching the store. Otherwise Requesting is set for the whole
// run and cleared in the same mutation that shows the alert, whether wf
// returns a message, an error, or panics.
func (e *Executor) Execute(ctx context.Context, name string, wf api.Workflow) (*api.Run, error) {
	runCtx, run, err := e.acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.run(runCtx, run, wf)
}

// Start acquires the executor synchronously and runs wf on a new
// goroutine. It returns the run ID, or api.ErrBusy.
func (e *Executor) Start(ctx context.Context, name string, wf api.Workflow) (string, error) {
	runCtx, run, err := e.acquire(ctx, name)
	if err != nil {
		return "", err
	}
	id := run.ID
	go func() {
		_, _ = e.run(runCtx, run, wf)
	}()
	return id, nil
}

// Cancel cancels the active workflow, if any. Its pending wait fails with
// api.ErrCancelled and the failure is surfaced as usual.
func (e *Executor) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Busy reports whether a workflow currently holds the executor.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Wait blocks until no workflow holds the executor.
func (e *Executor) Wait() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.busy {
		e.idle.Wait()
	}
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if ctx ends
// while a workflow still holds the executor. Another run may acquire the
// executor as soon as WaitContext returns nil.
func (e *Executor) WaitContext(ctx context.Context) error {
	for {
		e.mu.Lock()
		if !e.busy {
			e.mu.Unlock()
			return nil
		}
		released := e.released
		e.mu.Unlock()

		select {
		case <-released:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Executor) acquire(ctx context.Context, name string) (context.Context, *api.Run, error) {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		e.logger.Debug("workflow_rejected", slog.String("workflow", name), slog.String("reason", "busy"))
		return nil, nil, fmt.Errorf("%w: cannot start %s", api.ErrBusy, name)
	}
	e.busy = true
	e.released = make(chan struct{})
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	run := &api.Run{
		ID:        uuid.NewString(),
		Workflow:  name,
		Status:    api.StatusRunning,
		StartedAt: time.Now(),
	}

	e.store.MutateUI(func(ui *api.UIState) { ui.Requesting = true })
	return api.WithRun(runCtx, run, e.observer), run, nil
}

func (e *Executor) release() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = nil
	e.busy = false
	close(e.released)
	e.idle.Broadcast()
	e.mu.Unlock()
}

func (e *Executor) run(ctx context.Context, run *api.Run, wf api.Workflow) (*api.Run, error) {
	defer e.release()

	e.observer.OnWorkflowStart(ctx, run)

	msg, err := invoke(ctx, e.store, wf)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Status = api.StatusFailed
		run.Err = err
		run.Message = err.Error()
		e.observer.OnWorkflowFailed(ctx, run, err)
	} else {
		run.Status = api.StatusCompleted
		run.Message = msg
		e.observer.OnWorkflowCompleted(ctx, run)
	}

	e.showAlert(run.Message)
	return run, err
}

// showAlert publishes message after the alert delay. The timer ignores
// cancellation: a cancelled run still reports why it stopped.
func (e *Executor) showAlert(message string) {
	if e.alertDelay > 0 {
		t := time.NewTimer(e.alertDelay)
		<-t.C
	}
	e.store.MutateUI(func(ui *api.UIState) {
		ui.AlertMessage = message
		ui.ShowAlert = true
		ui.Requesting = false
	})
}

func invoke(ctx context.Context, st api.Store, wf api.Workflow) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &api.PanicError{Value: r}
		}
	}()
	if wf == nil {
		return "", errors.New("workflow is nil")
	}
	return wf(ctx, st)
}
