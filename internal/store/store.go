package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/petrijr/sessionflow/pkg/api"
)

// Persister receives the full DomainState after every mutation that
// changed it.
type Persister interface {
	Save(ctx context.Context, d api.DomainState) error
}

// Loader supplies the DomainState used to hydrate a store at start up.
type Loader interface {
	Load(ctx context.Context) api.DomainState
}

// Store is the reactive state holder. A single writer lock serialises
// mutation, notification and persistence so subscribers observe mutations
// in the order they happened. Readers only take the state lock.
type Store struct {
	writeMu sync.Mutex

	stateMu sync.RWMutex
	snap    api.Snapshot

	subsMu sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64

	persister Persister
	logger    *slog.Logger
}

var _ api.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPersister sets the persister invoked on domain changes.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInitial sets the initial DomainState without persisting it.
func WithInitial(d api.DomainState) Option {
	return func(s *Store) { s.snap.Domain = d }
}

// New creates a Store with empty UI state.
func New(opts ...Option) *Store {
	s := &Store{
		subs:   make(map[uint64]*subscription),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() api.Snapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.snap.Clone()
}

// Mutate applies fn and publishes the new state to every subscriber. If the
// DomainState changed, the whole record is handed to the persister.
func (s *Store) Mutate(fn func(ui *api.UIState, d *api.DomainState)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.stateMu.Lock()
	before := s.snap.Domain
	fn(&s.snap.UI, &s.snap.Domain)
	after := s.snap.Clone()
	s.stateMu.Unlock()

	s.notify(after)

	if s.persister != nil && before != after.Domain {
		if err := s.persister.Save(context.Background(), after.Domain); err != nil {
			s.logger.Error("state_persist_failed", slog.Any("error", err))
		}
	}
}

// MutateUI is Mutate restricted to UIState.
func (s *Store) MutateUI(fn func(ui *api.UIState)) {
	s.Mutate(func(ui *api.UIState, _ *api.DomainState) { fn(ui) })
}

// MutateDomain is Mutate restricted to DomainState.
func (s *Store) MutateDomain(fn func(d *api.DomainState)) {
	s.Mutate(func(_ *api.UIState, d *api.DomainState) { fn(d) })
}

// ClearDomain resets the DomainState to the empty record and persists it.
func (s *Store) ClearDomain() {
	s.Mutate(func(_ *api.UIState, d *api.DomainState) { *d = api.DomainState{} })
}

// Hydrate replaces the DomainState with what loader returns. The loaded
// record is published but not written back.
func (s *Store) Hydrate(ctx context.Context, loader Loader) {
	d := loader.Load(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.stateMu.Lock()
	s.snap.Domain = d
	after := s.snap.Clone()
	s.stateMu.Unlock()

	s.notify(after)
}

// Subscribe registers fn. fn is called with the current snapshot before
// Subscribe returns and then once per mutation, in order, until the
// subscription is cancelled.
func (s *Store) Subscribe(fn func(api.Snapshot)) api.Subscription {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.subsMu.Lock()
	s.nextID++
	sub := &subscription{id: s.nextID, fn: fn, store: s}
	s.subs[sub.id] = sub
	s.subsMu.Unlock()

	sub.deliver(s.Snapshot())
	return sub
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

// notify must be called with writeMu held.
func (s *Store) notify(snap api.Snapshot) {
	s.subsMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subsMu.Unlock()

	// Registration order keeps delivery deterministic for tests.
	sortByID(subs)
	for _, sub := range subs {
		sub.deliver(snap.Clone())
	}
}

func (s *Store) remove(id uint64) {
	s.subsMu.Lock()
	delete(s.subs, id)
	s.subsMu.Unlock()
}
