package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/petrijr/sessionflow/pkg/api"
)

// Source is the part of a store a wait needs.
type Source interface {
	Subscribe(fn func(api.Snapshot)) api.Subscription
}

type outcome[T any] struct {
	val T
	err error
}

// Await suspends until pred holds for a published snapshot, then returns
// extract applied to that snapshot.
//
// The wait resolves at most once: notifications arriving after the first
// satisfying one are ignored. The subscription is cancelled exactly once,
// whether the wait succeeds, extract fails, or ctx ends first. On ctx end
// the error matches both api.ErrCancelled and ctx.Err().
//
// pred and extract run inside the store's notification and must not
// mutate the store.
func Await[T any](
	ctx context.Context,
	src Source,
	pred func(api.Snapshot) bool,
	extract func(api.Snapshot) (T, error),
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, api.NewCancelledError(err)
	}

	var (
		mu       sync.Mutex
		resolved bool
	)
	done := make(chan outcome[T], 1)

	sub := src.Subscribe(func(s api.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if resolved || !pred(s) {
			return
		}
		resolved = true
		v, err := extract(s)
		done <- outcome[T]{val: v, err: err}
	})
	defer sub.Cancel()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		mu.Lock()
		resolved = true
		mu.Unlock()
		// A resolution that raced with cancellation still wins.
		select {
		case o := <-done:
			return o.val, o.err
		default:
		}
		return zero, api.NewCancelledError(ctx.Err())
	}
}

// observe wraps Await with observer callbacks for the named wait and marks
// the active run as waiting while it is suspended.
func observe[T any](ctx context.Context, wait string, fn func() (T, error)) (T, error) {
	run := api.RunFromContext(ctx)
	obs := api.ObserverFromContext(ctx)

	if run != nil {
		run.Status = api.StatusWaiting
	}
	obs.OnWaitStart(ctx, run, wait)
	start := time.Now()

	v, err := fn()

	obs.OnWaitResolved(ctx, run, wait, err, time.Since(start))
	if run != nil {
		run.Status = api.StatusRunning
	}
	return v, err
}
