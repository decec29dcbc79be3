package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/internal/store"
	"github.com/petrijr/sessionflow/pkg/api"
)

func sampleCredentials() []api.Credential {
	return []api.Credential{
		{Schema: "Passport", SchemaIdentifier: "s-pass", Identifier: "c1", Status: "VALID"},
		{Schema: "Driving Licence", SchemaIdentifier: "s-dl", Identifier: "c2", Status: "REVOKED"},
	}
}

func TestGetCredentials_FilterThenSelect(t *testing.T) {
	sdk := &fakeSDK{credentials: sampleCredentials(), filtered: sampleCredentials()[:1]}
	lib := &Library{SDK: sdk}
	st := store.New()

	done := start(st, lib.GetCredentials)
	assert.Equal(t, sampleCredentials(), awaitFilter(t, st))
	bridge.ApplyFilter(st, api.NewFilterSelection([]string{"VALID"}, []string{"s-pass"}))

	assert.Equal(t, []string{"Passport"}, awaitSheet(t, st))
	bridge.Select(st, "Passport")

	o := finish(t, done)
	require.NoError(t, o.err)
	assert.JSONEq(t, `{"schema":"Passport","schemaIdentifier":"s-pass","identifier":"c1","status":"VALID"}`, o.msg)
	assert.Equal(t, [][]string{{"VALID", "s-pass"}}, sdk.credFilters)
	assert.Nil(t, st.Snapshot().UI.FilterResult)
}

func TestGetCredentials_CancelledFilterSkipsFilteredFetch(t *testing.T) {
	sdk := &fakeSDK{credentials: sampleCredentials()}
	lib := &Library{SDK: sdk}
	st := store.New()

	done := start(st, lib.GetCredentials)
	awaitFilter(t, st)
	bridge.ApplyFilter(st, nil)

	o := finish(t, done)
	require.NoError(t, o.err)
	assert.Equal(t, "Failed to get credentials", o.msg)
	assert.Equal(t, 0, sdk.callsTo("GetCredentials:filtered"))
	assert.False(t, st.Snapshot().UI.ShowBottomSheet)
}

func TestGetCredentials_EmptyResultSkipsSelection(t *testing.T) {
	sdk := &fakeSDK{credentials: sampleCredentials()}
	lib := &Library{SDK: sdk}
	st := store.New()

	var opened bool
	sub := st.Subscribe(func(s api.Snapshot) {
		if s.UI.ShowBottomSheet {
			opened = true
		}
	})
	defer sub.Cancel()

	done := start(st, lib.GetCredentials)
	awaitFilter(t, st)
	bridge.ApplyFilter(st, api.NewFilterSelection([]string{"SUSPENDED", "EXPIRED"}, []string{"s-x"}))

	o := finish(t, done)
	require.NoError(t, o.err)
	assert.Equal(t, "No credentials found with statuses: [EXPIRED SUSPENDED] and types: [s-x]", o.msg)
	assert.False(t, opened, "selection sheet must not open for an empty result")
}

func TestGetCredentialDetails_CancelledFilterKeepsFullList(t *testing.T) {
	sdk := &fakeSDK{credentials: sampleCredentials()}
	lib := &Library{SDK: sdk}
	st := store.New()

	done := start(st, lib.GetCredentialDetails)
	awaitFilter(t, st)
	bridge.ApplyFilter(st, nil)

	assert.Equal(t, []string{"Passport", "Driving Licence"}, awaitSheet(t, st))
	bridge.Select(st, "Driving Licence")

	o := finish(t, done)
	require.NoError(t, o.err)
	assert.Contains(t, o.msg, `"identifier": "c2"`)
	assert.Equal(t, 0, sdk.callsTo("GetCredentials:filtered"))
}

func TestGetCredentialDetails_DismissedSelection(t *testing.T) {
	lib := &Library{SDK: &fakeSDK{credentials: sampleCredentials()}}
	st := store.New()

	done := start(st, lib.GetCredentialDetails)
	awaitFilter(t, st)
	bridge.ApplyFilter(st, nil)
	awaitSheet(t, st)
	dismissSheet(st)

	o := finish(t, done)
	require.NoError(t, o.err)
	assert.Equal(t, "Failed to get credentials", o.msg)
}
