package sessionflow

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/internal/persistence"
	"github.com/petrijr/sessionflow/pkg/api"
)

func newTestSession(t *testing.T, slot Slot, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithAlertDelay(0)}, opts...)
	sess, err := NewSession(context.Background(), slot, opts...)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func TestSession_HydratesFromSlot(t *testing.T) {
	ctx := context.Background()
	slot := persistence.NewInMemorySlot()

	first := newTestSession(t, slot)
	first.Store.MutateDomain(func(d *api.DomainState) {
		d.DigitalAddress = "did:example:1"
		d.LinkDeviceID = "dev-1"
	})

	second := newTestSession(t, slot)
	got := second.Store.Snapshot().Domain
	assert.Equal(t, "did:example:1", got.DigitalAddress)
	assert.Equal(t, "dev-1", got.LinkDeviceID)
	assert.Equal(t, got, second.State.Load(ctx))
}

func TestSession_SQLiteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	open := func() *Session {
		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		sess, err := NewSQLiteSession(ctx, db, WithAlertDelay(0))
		require.NoError(t, err)
		t.Cleanup(sess.Close)
		return sess
	}

	open().Store.MutateDomain(func(d *api.DomainState) { d.TransactionID = "tx-1" })
	assert.Equal(t, "tx-1", open().Store.Snapshot().Domain.TransactionID)
}

func TestSession_PassphraseSealsRecord(t *testing.T) {
	ctx := context.Background()
	slot := persistence.NewInMemorySlot()
	fast := persistence.WithScryptParams(1<<10, 8, 1)

	sess := newTestSession(t, slot, WithPassphrase("pw", fast))
	sess.Store.MutateDomain(func(d *api.DomainState) { d.Secret = "client-secret" })

	raw, err := slot.Get(ctx, persistence.DefaultStateKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "client-secret")

	reopened := newTestSession(t, slot, WithPassphrase("pw", fast))
	assert.Equal(t, "client-secret", reopened.Store.Snapshot().Domain.Secret)

	wrong := newTestSession(t, slot, WithPassphrase("nope", fast))
	assert.True(t, wrong.Store.Snapshot().Domain.IsZero())
}

func TestSession_TriggerRejectsWhileBusy(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, persistence.NewInMemorySlot())

	require.NoError(t, sess.Registry.Register("choose", func(ctx context.Context, st api.Store) (string, error) {
		return bridge.PresentSelection(ctx, st, []string{"a", "b"})
	}))
	require.NoError(t, sess.Registry.Register("quick", func(context.Context, api.Store) (string, error) {
		return "quick", nil
	}))

	_, err := sess.Trigger(ctx, "choose")
	require.NoError(t, err)

	_, err = sess.Trigger(ctx, "quick")
	assert.ErrorIs(t, err, ErrBusy)

	require.Eventually(t, func() bool { return sess.Store.Snapshot().UI.ShowBottomSheet }, time.Second, time.Millisecond)
	bridge.Select(sess.Store, "b")
	sess.Executor.Wait()

	assert.Equal(t, "b", sess.Store.Snapshot().UI.AlertMessage)
}

func TestSession_EnqueueRunsAfterActiveWorkflow(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, persistence.NewInMemorySlot())

	release := make(chan struct{})
	require.NoError(t, sess.Registry.Register("slow", func(context.Context, api.Store) (string, error) {
		<-release
		return "slow", nil
	}))
	require.NoError(t, sess.Registry.Register("next", func(context.Context, api.Store) (string, error) {
		return "next", nil
	}))

	require.NoError(t, sess.StartWorkers(ctx))
	assert.Error(t, sess.StartWorkers(ctx))

	_, err := sess.Trigger(ctx, "slow")
	require.NoError(t, err)
	_, err = sess.Enqueue(ctx, "next")
	require.NoError(t, err)

	close(release)
	require.Eventually(t, func() bool {
		return sess.Store.Snapshot().UI.AlertMessage == "next"
	}, 2*time.Second, time.Millisecond)
}

func TestSession_StopDropsQueuedActions(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, persistence.NewInMemorySlot())

	started := make(chan struct{})
	require.NoError(t, sess.Registry.Register("slow", func(ctx context.Context, _ api.Store) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}))
	require.NoError(t, sess.Registry.Register("next", func(context.Context, api.Store) (string, error) {
		return "next", nil
	}))

	require.NoError(t, sess.StartWorkers(ctx))
	_, err := sess.Enqueue(ctx, "slow")
	require.NoError(t, err)
	<-started

	_, err = sess.Enqueue(ctx, "next")
	require.NoError(t, err)
	_, err = sess.Enqueue(ctx, "next")
	require.NoError(t, err)

	sess.Stop()
	sess.Executor.Wait()

	assert.Equal(t, 0, sess.Queue.Len())
	assert.NotEqual(t, "next", sess.Store.Snapshot().UI.AlertMessage)
}

func TestSession_CloseWithActionQueuedBehindPendingWait(t *testing.T) {
	ctx := context.Background()
	sess, err := NewInMemorySession(ctx, WithAlertDelay(0))
	require.NoError(t, err)

	require.NoError(t, sess.Registry.Register("choose", func(ctx context.Context, st api.Store) (string, error) {
		return bridge.PresentSelection(ctx, st, []string{"a", "b"})
	}))
	require.NoError(t, sess.Registry.Register("next", func(context.Context, api.Store) (string, error) {
		return "next", nil
	}))

	require.NoError(t, sess.StartWorkers(ctx))
	_, err = sess.Trigger(ctx, "choose")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sess.Store.Snapshot().UI.ShowBottomSheet }, time.Second, time.Millisecond)

	_, err = sess.Enqueue(ctx, "next")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sess.Queue.Len() == 0 }, time.Second, time.Millisecond)

	closed := make(chan struct{})
	go func() {
		sess.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return while a workflow waited on the user")
	}

	ui := sess.Store.Snapshot().UI
	assert.False(t, ui.Requesting)
	assert.False(t, ui.ShowBottomSheet)
	assert.Equal(t, api.ErrCancelled.Error(), ui.AlertMessage)
}

func TestSession_RunUnknownAction(t *testing.T) {
	sess := newTestSession(t, persistence.NewInMemorySlot())

	_, err := sess.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownWorkflow)
}

func TestSession_CloseCancelsPendingWait(t *testing.T) {
	ctx := context.Background()
	sess, err := NewInMemorySession(ctx, WithAlertDelay(0))
	require.NoError(t, err)

	require.NoError(t, sess.Registry.Register("email", func(ctx context.Context, st api.Store) (string, error) {
		return bridge.PromptEmail(ctx, st)
	}))
	_, err = sess.Trigger(ctx, "email")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sess.Store.Snapshot().UI.ShowEmailInput }, time.Second, time.Millisecond)

	sess.Close()

	ui := sess.Store.Snapshot().UI
	assert.False(t, ui.Requesting)
	assert.False(t, ui.ShowEmailInput)
	assert.Equal(t, ErrCancelled.Error(), ui.AlertMessage)
}
