package api

import (
	"context"
	"time"
)

// Status represents the lifecycle state of a workflow run.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusWaiting   Status = "WAITING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Workflow is one user-triggered script: zero or more SDK calls and zero or
// more suspensions on user input, ending with a message or an error.
//
// The returned message is surfaced to the user as an alert. Errors are
// surfaced the same way using err.Error().
type Workflow func(ctx context.Context, st Store) (string, error)

// Run holds the outcome of a single workflow invocation.
type Run struct {
	ID       string
	Workflow string
	Status   Status

	// Message is the text that was (or will be) shown as the alert.
	Message string
	Err     error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took, or zero while it is still active.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Subscription is a revocable handle returned by Store.Subscribe.
type Subscription interface {
	// Cancel stops delivery. It is safe to call more than once.
	Cancel()
}

// Store is the reactive state holder workflows operate on.
//
// Every mutation is published to subscribers in the order it happened.
// Mutations that change the DomainState are persisted as a whole record.
type Store interface {
	// Snapshot returns a copy of the current state.
	Snapshot() Snapshot

	// Mutate applies fn to the UI and domain state and publishes the result.
	Mutate(fn func(ui *UIState, d *DomainState))

	// MutateUI is Mutate restricted to UIState.
	MutateUI(fn func(ui *UIState))

	// MutateDomain is Mutate restricted to DomainState.
	MutateDomain(fn func(d *DomainState))

	// ClearDomain resets the DomainState to its empty record.
	ClearDomain()

	// Subscribe registers fn. fn is called once with the current snapshot
	// and then once per mutation until the subscription is cancelled.
	// fn must not call Mutate synchronously.
	Subscribe(fn func(Snapshot)) Subscription
}
