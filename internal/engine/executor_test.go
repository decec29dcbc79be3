package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/internal/store"
	"github.com/petrijr/sessionflow/pkg/api"
)

// requestingRecorder records the Requesting flag and alert of every
// published snapshot.
type requestingRecorder struct {
	mu     sync.Mutex
	states []api.UIState
}

func (r *requestingRecorder) observe(s api.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s.UI)
}

func (r *requestingRecorder) snapshot() []api.UIState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.UIState(nil), r.states...)
}

func newTestExecutor(t *testing.T, opts ...Option) (*Executor, *store.Store, *requestingRecorder) {
	t.Helper()
	st := store.New()
	rec := &requestingRecorder{}
	sub := st.Subscribe(rec.observe)
	t.Cleanup(sub.Cancel)
	return NewExecutor(st, append([]Option{WithAlertDelay(0)}, opts...)...), st, rec
}

// assertRequestingSpan checks that Requesting is raised once and cleared in
// the same snapshot that shows the alert.
func assertRequestingSpan(t *testing.T, states []api.UIState, alert string) {
	t.Helper()
	require.NotEmpty(t, states)

	raised := -1
	for i, s := range states {
		if s.Requesting {
			raised = i
			break
		}
	}
	require.NotEqual(t, -1, raised, "Requesting was never set")

	last := states[len(states)-1]
	assert.False(t, last.Requesting)
	assert.True(t, last.ShowAlert)
	assert.Equal(t, alert, last.AlertMessage)

	for _, s := range states[raised : len(states)-1] {
		assert.True(t, s.Requesting, "Requesting dropped before the alert")
		assert.False(t, s.ShowAlert)
	}
}

func TestExecute_SuccessShowsMessage(t *testing.T) {
	exec, _, rec := newTestExecutor(t)

	run, err := exec.Execute(context.Background(), "configure", func(ctx context.Context, st api.Store) (string, error) {
		return "SDK successfully initialized", nil
	})

	require.NoError(t, err)
	assert.Equal(t, api.StatusCompleted, run.Status)
	assert.NotEmpty(t, run.ID)
	assertRequestingSpan(t, rec.snapshot(), "SDK successfully initialized")
	assert.False(t, exec.Busy())
}

func TestExecute_FailureShowsErrorText(t *testing.T) {
	exec, _, rec := newTestExecutor(t)
	boom := &api.SDKError{Op: "getDevices", Message: "device registry offline"}

	run, err := exec.Execute(context.Background(), "getDevices", func(ctx context.Context, st api.Store) (string, error) {
		st.MutateUI(func(ui *api.UIState) { ui.QRPrompt = true })
		return "", boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, api.StatusFailed, run.Status)
	assertRequestingSpan(t, rec.snapshot(), "device registry offline")
}

func TestExecute_PanicIsSurfaced(t *testing.T) {
	exec, _, rec := newTestExecutor(t)

	run, err := exec.Execute(context.Background(), "wf", func(ctx context.Context, st api.Store) (string, error) {
		panic("kaboom")
	})

	var pe *api.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.Equal(t, api.StatusFailed, run.Status)
	assertRequestingSpan(t, rec.snapshot(), "workflow panicked: kaboom")
	assert.False(t, exec.Busy())
}

func TestExecute_RejectsConcurrentRun(t *testing.T) {
	exec, st, _ := newTestExecutor(t)

	release := make(chan struct{})
	started := make(chan struct{})
	id, err := exec.Start(context.Background(), "slow", func(ctx context.Context, st api.Store) (string, error) {
		close(started)
		<-release
		return "done", nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	<-started

	before := st.Snapshot()
	_, err = exec.Execute(context.Background(), "other", func(ctx context.Context, st api.Store) (string, error) {
		t.Fatal("second workflow must not run")
		return "", nil
	})
	assert.ErrorIs(t, err, api.ErrBusy)
	assert.Equal(t, before, st.Snapshot(), "a rejected run must not touch the store")

	close(release)
	exec.Wait()
	assert.Equal(t, "done", st.Snapshot().UI.AlertMessage)
}

func TestCancel_AbortsPendingWait(t *testing.T) {
	metrics := &api.BasicMetrics{}
	exec, st, rec := newTestExecutor(t, WithObserver(metrics))

	done := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background(), "deleteDevice", func(ctx context.Context, st api.Store) (string, error) {
			_, err := bridge.PresentSelection(ctx, st, []string{"a"})
			return "", err
		})
		done <- err
	}()

	require.Eventually(t, func() bool { return st.Snapshot().UI.ShowBottomSheet }, time.Second, time.Millisecond)
	exec.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, api.ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not release the wait")
	}

	assertRequestingSpan(t, rec.snapshot(), api.ErrCancelled.Error())
	assert.False(t, st.Snapshot().UI.ShowBottomSheet)

	m := metrics.Snapshot()
	assert.Equal(t, int64(1), m.WorkflowsFailed)
	assert.Equal(t, int64(1), m.WaitsCancelled)
}

func TestWaitContext(t *testing.T) {
	exec, _, _ := newTestExecutor(t)
	require.NoError(t, exec.WaitContext(context.Background()))

	release := make(chan struct{})
	_, err := exec.Start(context.Background(), "slow", func(context.Context, api.Store) (string, error) {
		<-release
		return "done", nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, exec.WaitContext(ctx), context.DeadlineExceeded)
	assert.True(t, exec.Busy())

	close(release)
	require.NoError(t, exec.WaitContext(context.Background()))
	assert.False(t, exec.Busy())
}

func TestExecute_AlertDelay(t *testing.T) {
	st := store.New()
	exec := NewExecutor(st, WithAlertDelay(30*time.Millisecond))

	start := time.Now()
	_, err := exec.Execute(context.Background(), "wf", func(context.Context, api.Store) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.True(t, st.Snapshot().UI.ShowAlert)
}

func TestExecute_ObserverSeesRunLifecycle(t *testing.T) {
	metrics := &api.BasicMetrics{}
	exec, _, _ := newTestExecutor(t, WithObserver(metrics))

	_, _ = exec.Execute(context.Background(), "a", func(context.Context, api.Store) (string, error) { return "x", nil })
	_, _ = exec.Execute(context.Background(), "b", func(context.Context, api.Store) (string, error) {
		return "", errors.New("nope")
	})

	m := metrics.Snapshot()
	assert.Equal(t, int64(2), m.WorkflowsStarted)
	assert.Equal(t, int64(1), m.WorkflowsCompleted)
	assert.Equal(t, int64(1), m.WorkflowsFailed)
	assert.Equal(t, int64(0), m.PendingWorkflows)
}

func TestRunFromContext_IsAttached(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	var seen *api.Run
	run, err := exec.Execute(context.Background(), "ctx", func(ctx context.Context, st api.Store) (string, error) {
		seen = api.RunFromContext(ctx)
		return "", nil
	})

	require.NoError(t, err)
	assert.Same(t, run, seen)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	wf := func(context.Context, api.Store) (string, error) { return "", nil }

	require.NoError(t, r.Register("b", wf))
	require.NoError(t, r.Register("a", wf))
	assert.Error(t, r.Register("a", wf))
	assert.Error(t, r.Register("", wf))
	assert.Error(t, r.Register("c", nil))

	assert.Equal(t, []string{"a", "b"}, r.Names())

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, api.ErrUnknownWorkflow)
}
