package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/sessionflow/pkg/api"
)

type failingSlot struct{ err error }

func (f failingSlot) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingSlot) Set(context.Context, string, []byte) error  { return f.err }

func TestStateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewStateStore(NewInMemorySlot(), "", nil)

	want := api.DomainState{
		DigitalAddress:                "did:example:123",
		QRData:                        "qr-payload",
		LinkDeviceID:                  "dev-1",
		TransactionID:                 "tx-9",
		CredentialVerificationStarted: true,
		Email:                         "user@example.com",
		ClientID:                      "client",
		Secret:                        "s3cret",
	}
	require.NoError(t, st.Save(ctx, want))
	assert.Equal(t, want, st.Load(ctx))
}

func TestStateStore_EmptySlotYieldsEmptyRecord(t *testing.T) {
	st := NewStateStore(NewInMemorySlot(), "", nil)
	assert.True(t, st.Load(context.Background()).IsZero())
}

func TestStateStore_CorruptValueYieldsEmptyRecord(t *testing.T) {
	ctx := context.Background()
	slot := NewInMemorySlot()
	require.NoError(t, slot.Set(ctx, DefaultStateKey, []byte("{not json")))

	st := NewStateStore(slot, "", nil)
	assert.True(t, st.Load(ctx).IsZero())
}

func TestStateStore_BackendErrorYieldsEmptyRecord(t *testing.T) {
	boom := errors.New("backend down")
	st := NewStateStore(failingSlot{err: boom}, "", nil)

	assert.True(t, st.Load(context.Background()).IsZero())
	assert.ErrorIs(t, st.Save(context.Background(), api.DomainState{Email: "x"}), boom)
}

func TestStateStore_IgnoresUnknownFields(t *testing.T) {
	ctx := context.Background()
	slot := NewInMemorySlot()
	require.NoError(t, slot.Set(ctx, DefaultStateKey, []byte(`{"digitalAddress":"did:x","legacy":42}`)))

	got := NewStateStore(slot, "", nil).Load(ctx)
	assert.Equal(t, api.DomainState{DigitalAddress: "did:x"}, got)
}

func TestStateStore_ClearStoresEmptyRecord(t *testing.T) {
	ctx := context.Background()
	slot := NewInMemorySlot()
	st := NewStateStore(slot, "custom", nil)

	require.NoError(t, st.Save(ctx, api.DomainState{Email: "a@b.c"}))
	require.NoError(t, st.Clear(ctx))
	assert.True(t, st.Load(ctx).IsZero())

	_, err := slot.Get(ctx, DefaultStateKey)
	assert.ErrorIs(t, err, ErrSlotEmpty)
}
