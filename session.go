package sessionflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/petrijr/sessionflow/internal/engine"
	"github.com/petrijr/sessionflow/internal/persistence"
	"github.com/petrijr/sessionflow/internal/store"
	"github.com/petrijr/sessionflow/internal/taskqueue"
	"github.com/petrijr/sessionflow/pkg/api"
	"github.com/petrijr/sessionflow/pkg/worker"
)

// Session bundles a reactive store, the executor that runs workflows
// against it, a queue with its worker, and the state store the record is
// persisted through.
//
// Typical usage:
//
//	sess, err := sessionflow.NewInMemorySession(ctx)
//	lib := &workflows.Library{SDK: sdk}
//	_ = lib.Register(sess.Registry)
//
//	// Reject if something is already running:
//	runID, err := sess.Trigger(ctx, "getDevices")
//
//	// Or queue it behind the active workflow:
//	_ = sess.StartWorkers(ctx)
//	_, _ = sess.Enqueue(ctx, "getLanguage")
//	...
//	sess.Close()
type Session struct {
	// Store holds the UI and domain state workflows operate on.
	Store *store.Store

	// Executor runs one workflow at a time against Store.
	Executor *engine.Executor

	// Registry maps action names to workflows.
	Registry *engine.Registry

	// Queue holds actions waiting for Worker.
	Queue taskqueue.Queue

	// Worker drains Queue through Executor.
	Worker *worker.Worker

	// State persists Store's domain record.
	State *persistence.StateStore

	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

type sessionConfig struct {
	logger     *slog.Logger
	observer   api.Observer
	alertDelay *time.Duration
	stateKey   string
	passphrase string
	scrypt     []persistence.SealedOption
	queueSize  int
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithLogger sets the logger shared by every part of the session.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithObserver sets the observer notified about runs and waits.
func WithObserver(obs api.Observer) Option {
	return func(c *sessionConfig) { c.observer = obs }
}

// WithAlertDelay overrides the executor's alert delay.
func WithAlertDelay(d time.Duration) Option {
	return func(c *sessionConfig) { c.alertDelay = &d }
}

// WithStateKey stores the record under key instead of the default.
func WithStateKey(key string) Option {
	return func(c *sessionConfig) { c.stateKey = key }
}

// WithPassphrase encrypts the stored record with passphrase.
func WithPassphrase(passphrase string, opts ...persistence.SealedOption) Option {
	return func(c *sessionConfig) {
		c.passphrase = passphrase
		c.scrypt = opts
	}
}

// WithQueueSize sets the capacity of the action queue.
func WithQueueSize(n int) Option {
	return func(c *sessionConfig) { c.queueSize = n }
}

// NewSession builds a Session over slot and hydrates its store from it.
func NewSession(ctx context.Context, slot Slot, opts ...Option) (*Session, error) {
	cfg := sessionConfig{
		logger:    slog.Default(),
		queueSize: 64,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	if cfg.passphrase != "" {
		sealed, err := persistence.NewSealedSlot(slot, cfg.passphrase, cfg.scrypt...)
		if err != nil {
			return nil, err
		}
		slot = sealed
	}

	state := persistence.NewStateStore(slot, cfg.stateKey, cfg.logger)
	st := store.New(store.WithPersister(state), store.WithLogger(cfg.logger))
	st.Hydrate(ctx, state)

	execOpts := []engine.Option{
		engine.WithObserver(cfg.observer),
		engine.WithLogger(cfg.logger),
	}
	if cfg.alertDelay != nil {
		execOpts = append(execOpts, engine.WithAlertDelay(*cfg.alertDelay))
	}
	exec := engine.NewExecutor(st, execOpts...)

	reg := engine.NewRegistry()
	q := taskqueue.NewInMemoryQueue(cfg.queueSize)

	return &Session{
		Store:    st,
		Executor: exec,
		Registry: reg,
		Queue:    q,
		Worker:   worker.New(exec, reg, q, worker.WithLogger(cfg.logger)),
		State:    state,
		logger:   cfg.logger,
	}, nil
}

// Trigger starts action on its own goroutine and returns the run ID. It
// fails with ErrBusy while another workflow is active.
func (s *Session) Trigger(ctx context.Context, action string) (string, error) {
	wf, err := s.Registry.Get(action)
	if err != nil {
		return "", err
	}
	return s.Executor.Start(ctx, action, wf)
}

// Run executes action on the calling goroutine and returns the finished run.
func (s *Session) Run(ctx context.Context, action string) (*api.Run, error) {
	wf, err := s.Registry.Get(action)
	if err != nil {
		return nil, err
	}
	return s.Executor.Execute(ctx, action, wf)
}

// Enqueue queues action behind any active workflow. It runs once a worker
// started by StartWorkers picks it up.
func (s *Session) Enqueue(ctx context.Context, action string) (string, error) {
	return s.Worker.EnqueueAction(ctx, action)
}

// StartWorkers starts the goroutine draining the queue until Stop. Only one
// worker runs so queued actions stay in order.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (s *Session) StartWorkers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("sessionflow: workers already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Worker.Run(ctx); err != nil {
			s.logger.Error("worker_stopped", slog.Any("error", err))
		}
	}()
	return nil
}

// Stop cancels the worker started by StartWorkers and waits for it to exit.
// Actions still queued are dropped.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	for _, t := range s.Queue.Drain() {
		s.logger.Warn("queued_action_dropped",
			slog.String("task_id", t.ID),
			slog.String("action", t.Action),
			slog.Duration("queued", time.Since(t.EnqueuedAt)),
		)
	}
}

// Close stops the worker, cancels the active workflow and waits for it to
// surface its outcome. A worker parked behind a workflow that waits on the
// user gives up its task, so Close never depends on user input.
func (s *Session) Close() {
	s.Stop()
	s.Executor.Cancel()
	s.Executor.Wait()
}
