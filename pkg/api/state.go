package api

import (
	"slices"
	"sort"
)

// DomainState is the durable session record. It is persisted as a whole;
// the zero value is the empty default record.
type DomainState struct {
	DigitalAddress                string `json:"digitalAddress"`
	QRData                        string `json:"qrData"`
	LinkDeviceID                  string `json:"linkDeviceId"`
	TransactionID                 string `json:"transactionId"`
	CredentialVerificationStarted bool   `json:"credentialVerificationStarted"`
	Email                         string `json:"email"`
	ClientID                      string `json:"clientId"`
	Secret                        string `json:"secret"`
}

// IsZero reports whether d is the empty default record.
func (d DomainState) IsZero() bool {
	return d == DomainState{}
}

// UIState is transient presentation state. It is never persisted.
type UIState struct {
	// Requesting is set while a workflow holds the executor.
	Requesting bool

	AlertMessage string
	ShowAlert    bool

	// Selection sheet.
	ShowBottomSheet bool
	ChooserList     []string
	SelectableItems bool
	SelectedItem    *string

	// Credential filter sheet. FilterCandidates is what the sheet offers,
	// FilterResult is written by the sheet on apply and read once.
	ShowFilterSheet  bool
	FilterCandidates []Credential
	FilterResult     *FilterSelection

	ShowEmailInput     bool
	ShowConfigureSheet bool

	// QRPrompt is set while a presenter is asking for a QR code.
	QRPrompt bool
}

// Selected returns the selected chooser item, if any.
func (u UIState) Selected() (string, bool) {
	if u.SelectedItem == nil || *u.SelectedItem == "" {
		return "", false
	}
	return *u.SelectedItem, true
}

// FilterSelection is the one-shot value produced by the credential filter.
type FilterSelection struct {
	Statuses  map[string]struct{}
	SchemaIDs map[string]struct{}
}

// NewFilterSelection builds a FilterSelection from plain slices.
func NewFilterSelection(statuses, schemaIDs []string) *FilterSelection {
	f := &FilterSelection{
		Statuses:  make(map[string]struct{}, len(statuses)),
		SchemaIDs: make(map[string]struct{}, len(schemaIDs)),
	}
	for _, s := range statuses {
		f.Statuses[s] = struct{}{}
	}
	for _, s := range schemaIDs {
		f.SchemaIDs[s] = struct{}{}
	}
	return f
}

// StatusList returns the statuses in sorted order.
func (f *FilterSelection) StatusList() []string {
	return sortedKeys(f.Statuses)
}

// SchemaIDList returns the schema identifiers in sorted order.
func (f *FilterSelection) SchemaIDList() []string {
	return sortedKeys(f.SchemaIDs)
}

func (f *FilterSelection) clone() *FilterSelection {
	if f == nil {
		return nil
	}
	return NewFilterSelection(f.StatusList(), f.SchemaIDList())
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Snapshot is the unit a Store publishes.
type Snapshot struct {
	UI     UIState
	Domain DomainState
}

// Clone returns a deep copy so that receivers never share slices or
// pointers with the store.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.UI.ChooserList = slices.Clone(s.UI.ChooserList)
	out.UI.FilterCandidates = slices.Clone(s.UI.FilterCandidates)
	out.UI.FilterResult = s.UI.FilterResult.clone()
	if s.UI.SelectedItem != nil {
		v := *s.UI.SelectedItem
		out.UI.SelectedItem = &v
	}
	return out
}
