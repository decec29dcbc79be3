package workflows

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/sessionflow/internal/store"
	"github.com/petrijr/sessionflow/pkg/api"
)

// fakeSDK is an in-memory IdentitySDK that records the calls it receives.
type fakeSDK struct {
	mu sync.Mutex

	devices     []api.Device
	credentials []api.Credential
	filtered    []api.Credential
	language    string
	link        api.LinkResult
	tx          api.TransactionResult
	err         error

	calls        []string
	deleted      []string
	credFilters  [][]string
	emails       []string
	configuredAs []string
	acceptedWith []string
}

var _ api.IdentitySDK = (*fakeSDK)(nil)

func (f *fakeSDK) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSDK) callsTo(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeSDK) Configure(_ context.Context, baseURL, clientID, secret string) error {
	f.record("Configure")
	f.configuredAs = []string{baseURL, clientID, secret}
	return f.err
}

func (f *fakeSDK) RecoverDigitalAddress(_ context.Context, qr string) (api.LinkResult, error) {
	f.record("RecoverDigitalAddress:" + qr)
	return f.link, f.err
}

func (f *fakeSDK) ImportDigitalAddress(_ context.Context, qr string) (api.LinkResult, error) {
	f.record("ImportDigitalAddress:" + qr)
	return f.link, f.err
}

func (f *fakeSDK) GetDevices(context.Context) ([]api.Device, error) {
	f.record("GetDevices")
	return slices.Clone(f.devices), f.err
}

func (f *fakeSDK) DeleteDevice(_ context.Context, id string) error {
	f.record("DeleteDevice")
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return f.err
}

func (f *fakeSDK) GetCredentials(_ context.Context, statuses, schemaIDs []string) ([]api.Credential, error) {
	if len(statuses) == 0 && len(schemaIDs) == 0 {
		f.record("GetCredentials")
		return slices.Clone(f.credentials), f.err
	}
	f.record("GetCredentials:filtered")
	f.mu.Lock()
	f.credFilters = append(f.credFilters, append(slices.Clone(statuses), schemaIDs...))
	f.mu.Unlock()
	return slices.Clone(f.filtered), f.err
}

func (f *fakeSDK) GetLanguage(context.Context) (string, error) {
	f.record("GetLanguage")
	return f.language, f.err
}

func (f *fakeSDK) SetLanguage(_ context.Context, code string) (string, error) {
	f.record("SetLanguage:" + code)
	return "Language set to " + code, f.err
}

func (f *fakeSDK) SendRecoveryEmail(_ context.Context, email string) error {
	f.record("SendRecoveryEmail")
	f.emails = append(f.emails, email)
	return f.err
}

func (f *fakeSDK) SetRecoveryEmail(_ context.Context, email string) error {
	f.record("SetRecoveryEmail")
	f.emails = append(f.emails, email)
	return f.err
}

func (f *fakeSDK) StartCredentialVerificationProcess(_ context.Context, tx string) (api.VerificationResult, error) {
	f.record("StartCredentialVerificationProcess:" + tx)
	return api.VerificationResult{QuestionTitle: "Prove your age", Status: "PENDING"}, f.err
}

func (f *fakeSDK) AcceptProof(_ context.Context, tx, credID string) (api.TransactionResult, error) {
	f.record("AcceptProof:" + tx)
	f.acceptedWith = append(f.acceptedWith, credID)
	return f.tx, f.err
}

func (f *fakeSDK) RejectProof(_ context.Context, tx string) (api.TransactionResult, error) {
	f.record("RejectProof:" + tx)
	return f.tx, f.err
}

func (f *fakeSDK) DeviceBootstrappingVerification(context.Context) (api.TransactionResult, error) {
	f.record("DeviceBootstrappingVerification")
	return f.tx, f.err
}

func (f *fakeSDK) CheckBootstrappingStatus(_ context.Context, tx string) (api.StatusResult, error) {
	f.record("CheckBootstrappingStatus:" + tx)
	return api.StatusResult{Status: f.tx.Status}, f.err
}

func (f *fakeSDK) ProofProcess(_ context.Context, qr string) error {
	f.record("ProofProcess:" + qr)
	return f.err
}

type outcome struct {
	msg string
	err error
}

// start runs wf against st on its own goroutine, the way the executor does.
func start(st api.Store, wf api.Workflow) <-chan outcome {
	ch := make(chan outcome, 1)
	go func() {
		msg, err := wf(context.Background(), st)
		ch <- outcome{msg, err}
	}()
	return ch
}

func finish(t *testing.T, ch <-chan outcome) outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("workflow did not finish")
		return outcome{}
	}
}

// awaitSheet blocks until the selection sheet is open and returns its items.
func awaitSheet(t *testing.T, st *store.Store) []string {
	t.Helper()
	require.Eventually(t, func() bool {
		return st.Snapshot().UI.ShowBottomSheet && st.Subscribers() > 0
	}, time.Second, time.Millisecond)
	return st.Snapshot().UI.ChooserList
}

// awaitFilter blocks until the filter sheet is open and returns its candidates.
func awaitFilter(t *testing.T, st *store.Store) []api.Credential {
	t.Helper()
	require.Eventually(t, func() bool {
		return st.Snapshot().UI.ShowFilterSheet && st.Subscribers() > 0
	}, time.Second, time.Millisecond)
	return st.Snapshot().UI.FilterCandidates
}

func dismissSheet(st *store.Store) {
	st.MutateUI(func(ui *api.UIState) { ui.ShowBottomSheet = false })
}
