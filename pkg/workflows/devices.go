package workflows

import (
	"context"
	"errors"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/pkg/api"
)

// GetDevices shows the selected device as JSON.
func (l *Library) GetDevices(ctx context.Context, st api.Store) (string, error) {
	return l.GetDeviceDetails(ctx, st)
}

// GetDeviceDetails lets the user pick one of the linked devices and shows
// it as JSON. Closing the sheet without a choice yields an empty message.
func (l *Library) GetDeviceDetails(ctx context.Context, st api.Store) (string, error) {
	dev, ok, err := l.selectDevice(ctx, st)
	if err != nil || !ok {
		return "", err
	}
	return toJSON(dev), nil
}

// DeleteDevice removes the device the user picks. Deleting the device this
// session is linked through also clears the session record.
func (l *Library) DeleteDevice(ctx context.Context, st api.Store) (string, error) {
	dev, ok, err := l.selectDevice(ctx, st)
	if err != nil {
		return "", err
	}
	if !ok {
		return "Failed to delete device.", nil
	}

	if err := l.SDK.DeleteDevice(ctx, dev.Identifier); err != nil {
		return "", err
	}
	if dev.Identifier == st.Snapshot().Domain.LinkDeviceID {
		st.ClearDomain()
	}
	return "Successfully deleted.", nil
}

// selectDevice fetches the devices, asks the user for one and maps the
// chosen label back to its record. ok is false when the sheet was closed
// without a choice or the label matched nothing.
func (l *Library) selectDevice(ctx context.Context, st api.Store) (api.Device, bool, error) {
	devices, err := l.SDK.GetDevices(ctx)
	if err != nil {
		return api.Device{}, false, err
	}

	labels := make([]string, len(devices))
	for i, d := range devices {
		labels[i] = d.Label()
	}

	label, err := bridge.PresentSelection(ctx, st, labels)
	if errors.Is(err, api.ErrNoSelection) {
		return api.Device{}, false, nil
	}
	if err != nil {
		return api.Device{}, false, err
	}

	for _, d := range devices {
		if d.Label() == label {
			return d, true, nil
		}
	}
	return api.Device{}, false, nil
}
