package workflows

import (
	"context"

	"github.com/petrijr/sessionflow/pkg/api"
)

// Configure hands the stored client credentials to the SDK and closes the
// configure sheet.
func (l *Library) Configure(ctx context.Context, st api.Store) (string, error) {
	d := st.Snapshot().Domain
	if err := l.SDK.Configure(ctx, l.BaseURL, d.ClientID, d.Secret); err != nil {
		return "", err
	}
	st.MutateUI(func(ui *api.UIState) { ui.ShowConfigureSheet = false })
	return "SDK successfully initialized", nil
}

// AuthUser recovers the digital address encoded in the scanned QR data and
// links this device to it.
func (l *Library) AuthUser(ctx context.Context, st api.Store) (string, error) {
	res, err := l.SDK.RecoverDigitalAddress(ctx, st.Snapshot().Domain.QRData)
	if err != nil {
		return "", err
	}
	storeLink(st, res)
	return "Authentication succeed and device linked with digital address", nil
}

// RegUser imports the digital address encoded in the scanned QR data.
func (l *Library) RegUser(ctx context.Context, st api.Store) (string, error) {
	res, err := l.SDK.ImportDigitalAddress(ctx, st.Snapshot().Domain.QRData)
	if err != nil {
		return "", err
	}
	storeLink(st, res)
	return "Registration succeed and device linked with digital address", nil
}

func storeLink(st api.Store, res api.LinkResult) {
	st.MutateDomain(func(d *api.DomainState) {
		d.DigitalAddress = res.DigitalAddress
		d.LinkDeviceID = res.LinkDeviceID
	})
}

// DetectQR scans a QR code and keeps its text for later link actions.
func (l *Library) DetectQR(ctx context.Context, st api.Store) (string, error) {
	qr, err := l.scan(ctx, st)
	if err != nil {
		return "", err
	}
	st.MutateDomain(func(d *api.DomainState) { d.QRData = qr })
	return toJSON(qr), nil
}

// ProofProcess scans a QR code and hands it to the SDK.
func (l *Library) ProofProcess(ctx context.Context, st api.Store) (string, error) {
	qr, err := l.scan(ctx, st)
	if err != nil {
		return "", err
	}
	if err := l.SDK.ProofProcess(ctx, qr); err != nil {
		return "", err
	}
	return "Process action executed", nil
}

// scan flags the QR prompt for presenters while the scanner runs.
func (l *Library) scan(ctx context.Context, st api.Store) (string, error) {
	if l.Scanner == nil {
		return "", &api.PreconditionUnavailableError{What: "QR scanner"}
	}
	st.MutateUI(func(ui *api.UIState) { ui.QRPrompt = true })
	defer st.MutateUI(func(ui *api.UIState) { ui.QRPrompt = false })
	return l.Scanner.Scan(ctx)
}
