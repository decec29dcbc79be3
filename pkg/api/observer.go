package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the executor and the continuation
// bridge for logging and metrics.
//
// Implementations should be fast and non-blocking; they are called on the
// workflow's goroutine.
type Observer interface {
	// OnWorkflowStart is called once the executor slot has been acquired,
	// before the workflow function runs.
	OnWorkflowStart(ctx context.Context, run *Run)

	// OnWorkflowCompleted is called when the workflow returned a message.
	OnWorkflowCompleted(ctx context.Context, run *Run)

	// OnWorkflowFailed is called when the workflow returned an error or
	// panicked.
	OnWorkflowFailed(ctx context.Context, run *Run, err error)

	// OnWaitStart is called when the workflow suspends on user input.
	OnWaitStart(ctx context.Context, run *Run, wait string)

	// OnWaitResolved is called when a suspension resolves, for both
	// successes and failures (err != nil).
	OnWaitResolved(ctx context.Context, run *Run, wait string, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnWorkflowStart(ctx context.Context, run *Run)                {}
func (NoopObserver) OnWorkflowCompleted(ctx context.Context, run *Run)            {}
func (NoopObserver) OnWorkflowFailed(ctx context.Context, run *Run, err error)    {}
func (NoopObserver) OnWaitStart(ctx context.Context, run *Run, wait string)       {}
func (NoopObserver) OnWaitResolved(ctx context.Context, run *Run, wait string, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWorkflowStart(ctx context.Context, run *Run) {
	for _, o := range c.observers {
		o.OnWorkflowStart(ctx, run)
	}
}

func (c *CompositeObserver) OnWorkflowCompleted(ctx context.Context, run *Run) {
	for _, o := range c.observers {
		o.OnWorkflowCompleted(ctx, run)
	}
}

func (c *CompositeObserver) OnWorkflowFailed(ctx context.Context, run *Run, err error) {
	for _, o := range c.observers {
		o.OnWorkflowFailed(ctx, run, err)
	}
}

func (c *CompositeObserver) OnWaitStart(ctx context.Context, run *Run, wait string) {
	for _, o := range c.observers {
		o.OnWaitStart(ctx, run, wait)
	}
}

func (c *CompositeObserver) OnWaitResolved(ctx context.Context, run *Run, wait string, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnWaitResolved(ctx, run, wait, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs workflow and wait
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnWorkflowStart(ctx context.Context, run *Run) {
	o.Logger.InfoContext(ctx, "workflow_start",
		slog.String("workflow", run.Workflow),
		slog.String("run_id", run.ID),
	)
}

func (o *LoggingObserver) OnWorkflowCompleted(ctx context.Context, run *Run) {
	o.Logger.InfoContext(ctx, "workflow_completed",
		slog.String("workflow", run.Workflow),
		slog.String("run_id", run.ID),
		slog.Duration("duration", run.Duration()),
	)
}

func (o *LoggingObserver) OnWorkflowFailed(ctx context.Context, run *Run, err error) {
	o.Logger.ErrorContext(ctx, "workflow_failed",
		slog.String("workflow", run.Workflow),
		slog.String("run_id", run.ID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnWaitStart(ctx context.Context, run *Run, wait string) {
	o.Logger.DebugContext(ctx, "wait_start",
		slog.String("workflow", runName(run)),
		slog.String("run_id", runID(run)),
		slog.String("wait", wait),
	)
}

func (o *LoggingObserver) OnWaitResolved(ctx context.Context, run *Run, wait string, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	o.Logger.Log(ctx, level, "wait_resolved",
		slog.String("workflow", runName(run)),
		slog.String("run_id", runID(run)),
		slog.String("wait", wait),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func runName(r *Run) string {
	if r == nil {
		return ""
	}
	return r.Workflow
}

func runID(r *Run) string {
	if r == nil {
		return ""
	}
	return r.ID
}

// BasicMetrics collects simple counters and aggregate wait durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	workflowsStarted   atomic.Int64
	workflowsCompleted atomic.Int64
	workflowsFailed    atomic.Int64
	waitsResolved      atomic.Int64
	waitsCancelled     atomic.Int64
	totalWaitDuration  atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	WorkflowsStarted   int64
	WorkflowsCompleted int64
	WorkflowsFailed    int64
	PendingWorkflows   int64

	WaitsResolved  int64
	WaitsCancelled int64
	AvgWait        time.Duration
}

func (m *BasicMetrics) OnWorkflowStart(ctx context.Context, run *Run) {
	m.workflowsStarted.Add(1)
}

func (m *BasicMetrics) OnWorkflowCompleted(ctx context.Context, run *Run) {
	m.workflowsCompleted.Add(1)
}

func (m *BasicMetrics) OnWorkflowFailed(ctx context.Context, run *Run, err error) {
	m.workflowsFailed.Add(1)
}

func (m *BasicMetrics) OnWaitResolved(ctx context.Context, run *Run, wait string, err error, d time.Duration) {
	// Only successful waits count towards the average.
	if err != nil {
		m.waitsCancelled.Add(1)
		return
	}
	m.waitsResolved.Add(1)
	m.totalWaitDuration.Add(d.Nanoseconds())
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.workflowsStarted.Load()
	completed := m.workflowsCompleted.Load()
	failed := m.workflowsFailed.Load()
	resolved := m.waitsResolved.Load()
	totalNs := m.totalWaitDuration.Load()

	var avg time.Duration
	if resolved > 0 {
		avg = time.Duration(totalNs / resolved)
	}

	return BasicMetricsSnapshot{
		WorkflowsStarted:   started,
		WorkflowsCompleted: completed,
		WorkflowsFailed:    failed,
		PendingWorkflows:   started - completed - failed,
		WaitsResolved:      resolved,
		WaitsCancelled:     m.waitsCancelled.Load(),
		AvgWait:            avg,
	}
}
