package api

import "context"

type runContextKey struct{}

type runScope struct {
	run      *Run
	observer Observer
}

// WithRun attaches the active run and its observer to ctx so that waits
// started by the workflow can report through the same observer.
func WithRun(ctx context.Context, run *Run, obs Observer) context.Context {
	if obs == nil {
		obs = NoopObserver{}
	}
	return context.WithValue(ctx, runContextKey{}, runScope{run: run, observer: obs})
}

// RunFromContext returns the run attached by WithRun, or nil.
func RunFromContext(ctx context.Context) *Run {
	if s, ok := ctx.Value(runContextKey{}).(runScope); ok {
		return s.run
	}
	return nil
}

// ObserverFromContext returns the observer attached by WithRun, or a
// NoopObserver.
func ObserverFromContext(ctx context.Context) Observer {
	if s, ok := ctx.Value(runContextKey{}).(runScope); ok {
		return s.observer
	}
	return NoopObserver{}
}
