package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/pkg/api"
)

const failedCredentials = "Failed to get credentials"

// GetCredentials fetches every credential, lets the user narrow them with
// the filter sheet, fetches again with that filter and shows the credential
// the user picks.
//
// A cancelled filter ends the action without the filtered fetch. An empty
// filtered result is reported without opening a selection sheet.
func (l *Library) GetCredentials(ctx context.Context, st api.Store) (string, error) {
	all, err := l.SDK.GetCredentials(ctx, nil, nil)
	if err != nil {
		return "", err
	}

	sel, err := bridge.PresentCredentialsFilter(ctx, st, all)
	if err != nil {
		return "", err
	}
	if sel == nil {
		return failedCredentials, nil
	}

	statuses, types := sel.StatusList(), sel.SchemaIDList()
	filtered, err := l.SDK.GetCredentials(ctx, statuses, types)
	if err != nil {
		return "", err
	}
	if len(filtered) == 0 {
		return fmt.Sprintf("No credentials found with statuses: %v and types: %v", statuses, types), nil
	}

	return l.showCredential(ctx, st, filtered)
}

// GetCredentialDetails is GetCredentials where a cancelled filter keeps the
// unfiltered list.
func (l *Library) GetCredentialDetails(ctx context.Context, st api.Store) (string, error) {
	creds, err := l.SDK.GetCredentials(ctx, nil, nil)
	if err != nil {
		return "", err
	}

	sel, err := bridge.PresentCredentialsFilter(ctx, st, creds)
	if err != nil {
		return "", err
	}
	if sel != nil {
		creds, err = l.SDK.GetCredentials(ctx, sel.StatusList(), sel.SchemaIDList())
		if err != nil {
			return "", err
		}
	}

	return l.showCredential(ctx, st, creds)
}

func (l *Library) showCredential(ctx context.Context, st api.Store, creds []api.Credential) (string, error) {
	cred, ok, err := selectCredential(ctx, st, creds)
	if err != nil {
		return "", err
	}
	if !ok {
		return failedCredentials, nil
	}
	return toJSON(cred), nil
}

// selectCredential offers creds by schema name and returns the first one
// whose schema matches the chosen label.
func selectCredential(ctx context.Context, st api.Store, creds []api.Credential) (api.Credential, bool, error) {
	labels := make([]string, 0, len(creds))
	for _, c := range creds {
		if c.Schema != "" {
			labels = append(labels, c.Schema)
		}
	}

	label, err := bridge.PresentSelection(ctx, st, labels)
	if errors.Is(err, api.ErrNoSelection) {
		return api.Credential{}, false, nil
	}
	if err != nil {
		return api.Credential{}, false, err
	}

	for _, c := range creds {
		if c.Schema == label {
			return c, true, nil
		}
	}
	return api.Credential{}, false, nil
}
