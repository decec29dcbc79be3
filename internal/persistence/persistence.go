package persistence

import (
	"context"
	"errors"
)

// DefaultStateKey is the slot the session record is stored under.
const DefaultStateKey = "state"

// ErrSlotEmpty is returned by Slot.Get when nothing is stored under a key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable key-value cell. Set replaces the whole value.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}
