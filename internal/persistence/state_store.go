package persistence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/petrijr/sessionflow/pkg/api"
)

// StateStore keeps the session record in a single Slot key.
//
// Save writes the whole record. Load never fails: an empty slot, an
// unreadable value or a backend error all yield the empty record, so a
// session always starts.
type StateStore struct {
	slot   Slot
	key    string
	logger *slog.Logger
}

// NewStateStore returns a StateStore using key inside slot. An empty key
// means DefaultStateKey.
func NewStateStore(slot Slot, key string, logger *slog.Logger) *StateStore {
	if key == "" {
		key = DefaultStateKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{slot: slot, key: key, logger: logger}
}

// Save replaces the stored record with d.
func (s *StateStore) Save(ctx context.Context, d api.DomainState) error {
	data, err := EncodeState(d)
	if err != nil {
		return err
	}
	return s.slot.Set(ctx, s.key, data)
}

// Load returns the stored record, or the empty record if none can be read.
func (s *StateStore) Load(ctx context.Context) api.DomainState {
	data, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger.Warn("state_load_failed", slog.String("key", s.key), slog.Any("error", err))
		}
		return api.DomainState{}
	}
	d, err := DecodeState(data)
	if err != nil {
		s.logger.Warn("state_decode_failed", slog.String("key", s.key), slog.Any("error", err))
		return api.DomainState{}
	}
	return d
}

// Clear stores the empty record.
func (s *StateStore) Clear(ctx context.Context) error {
	return s.Save(ctx, api.DomainState{})
}
