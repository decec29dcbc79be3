package store

import (
	"sort"
	"sync/atomic"

	"github.com/petrijr/sessionflow/pkg/api"
)

type subscription struct {
	id        uint64
	fn        func(api.Snapshot)
	store     *Store
	cancelled atomic.Bool
}

var _ api.Subscription = (*subscription)(nil)

func (s *subscription) deliver(snap api.Snapshot) {
	// A subscription cancelled mid-notification must not see later states.
	if s.cancelled.Load() {
		return
	}
	s.fn(snap)
}

// Cancel stops delivery. Only the first call has an effect.
func (s *subscription) Cancel() {
	if !s.cancelled.CompareAndSwap(false, true) {
		return
	}
	s.store.remove(s.id)
}

func sortByID(subs []*subscription) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
}
