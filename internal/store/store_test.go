package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/sessionflow/pkg/api"
)

type recordingPersister struct {
	mu    sync.Mutex
	saved []api.DomainState
	err   error
}

func (p *recordingPersister) Save(_ context.Context, d api.DomainState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, d)
	return p.err
}

func (p *recordingPersister) records() []api.DomainState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.DomainState(nil), p.saved...)
}

type staticLoader api.DomainState

func (l staticLoader) Load(context.Context) api.DomainState { return api.DomainState(l) }

func TestSubscribe_DeliversCurrentStateFirst(t *testing.T) {
	s := New(WithInitial(api.DomainState{Email: "a@b.c"}))

	var got []api.Snapshot
	sub := s.Subscribe(func(snap api.Snapshot) { got = append(got, snap) })
	defer sub.Cancel()

	require.Len(t, got, 1)
	assert.Equal(t, "a@b.c", got[0].Domain.Email)
}

func TestMutate_NotifiesInOrder(t *testing.T) {
	s := New()

	var seen []string
	sub := s.Subscribe(func(snap api.Snapshot) { seen = append(seen, snap.UI.AlertMessage) })
	defer sub.Cancel()

	for _, msg := range []string{"one", "two", "three"} {
		s.MutateUI(func(ui *api.UIState) { ui.AlertMessage = msg })
	}

	assert.Equal(t, []string{"", "one", "two", "three"}, seen)
}

func TestMutate_ConcurrentWritersDeliverEveryState(t *testing.T) {
	s := New()

	var (
		mu   sync.Mutex
		seen []int
	)
	sub := s.Subscribe(func(snap api.Snapshot) {
		mu.Lock()
		seen = append(seen, len(snap.UI.ChooserList))
		mu.Unlock()
	})
	defer sub.Cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.MutateUI(func(ui *api.UIState) { ui.ChooserList = append(ui.ChooserList, "x") })
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 51)
	for i, n := range seen {
		assert.Equal(t, i, n, "notification %d out of order", i)
	}
}

func TestMutate_PersistsOnlyDomainChanges(t *testing.T) {
	p := &recordingPersister{}
	s := New(WithPersister(p))

	s.MutateUI(func(ui *api.UIState) { ui.ShowAlert = true })
	assert.Empty(t, p.records())

	s.MutateDomain(func(d *api.DomainState) { d.DigitalAddress = "did:1" })
	s.MutateDomain(func(d *api.DomainState) { d.DigitalAddress = "did:1" })
	s.Mutate(func(ui *api.UIState, d *api.DomainState) {
		ui.Requesting = true
		d.Email = "x@y.z"
	})

	assert.Equal(t, []api.DomainState{
		{DigitalAddress: "did:1"},
		{DigitalAddress: "did:1", Email: "x@y.z"},
	}, p.records())
}

func TestMutate_PersistFailureDoesNotBlockUpdates(t *testing.T) {
	p := &recordingPersister{err: errors.New("disk full")}
	s := New(WithPersister(p))

	s.MutateDomain(func(d *api.DomainState) { d.Email = "a@b.c" })

	assert.Equal(t, "a@b.c", s.Snapshot().Domain.Email)
	assert.Len(t, p.records(), 1)
}

func TestClearDomain_PersistsEmptyRecord(t *testing.T) {
	p := &recordingPersister{}
	s := New(WithPersister(p), WithInitial(api.DomainState{DigitalAddress: "did:1"}))

	s.ClearDomain()

	assert.True(t, s.Snapshot().Domain.IsZero())
	assert.Equal(t, []api.DomainState{{}}, p.records())
}

func TestHydrate_PublishesWithoutSaving(t *testing.T) {
	p := &recordingPersister{}
	s := New(WithPersister(p))

	var last api.Snapshot
	sub := s.Subscribe(func(snap api.Snapshot) { last = snap })
	defer sub.Cancel()

	s.Hydrate(context.Background(), staticLoader{DigitalAddress: "did:loaded"})

	assert.Equal(t, "did:loaded", last.Domain.DigitalAddress)
	assert.Equal(t, "did:loaded", s.Snapshot().Domain.DigitalAddress)
	assert.Empty(t, p.records())
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	s := New()

	calls := 0
	sub := s.Subscribe(func(api.Snapshot) { calls++ })
	require.Equal(t, 1, s.Subscribers())

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, s.Subscribers())

	s.MutateUI(func(ui *api.UIState) { ui.ShowAlert = true })
	assert.Equal(t, 1, calls)
}

func TestSubscription_CancelDuringNotification(t *testing.T) {
	s := New()

	var second api.Subscription
	secondCalls := 0
	first := s.Subscribe(func(snap api.Snapshot) {
		if snap.UI.ShowAlert && second != nil {
			second.Cancel()
		}
	})
	defer first.Cancel()
	second = s.Subscribe(func(api.Snapshot) { secondCalls++ })

	s.MutateUI(func(ui *api.UIState) { ui.ShowAlert = true })

	assert.Equal(t, 1, secondCalls, "only the initial snapshot should reach the cancelled subscriber")
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New()
	s.MutateUI(func(ui *api.UIState) { ui.ChooserList = []string{"a", "b"} })

	snap := s.Snapshot()
	snap.UI.ChooserList[0] = "changed"

	assert.Equal(t, "a", s.Snapshot().UI.ChooserList[0])
}
