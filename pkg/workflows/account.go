package workflows

import (
	"context"
	"errors"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/pkg/api"
)

// Languages offered by SetLanguage, in display order, with their codes.
var Languages = []struct {
	Name string
	Code string
}{
	{Name: "Japan", Code: "ja"},
	{Name: "English", Code: "en"},
}

// SendRecoveryEmail asks for an address and sends a recovery email to it.
func (l *Library) SendRecoveryEmail(ctx context.Context, st api.Store) (string, error) {
	email, err := bridge.PromptEmail(ctx, st)
	if err != nil {
		return "", err
	}
	if err := l.SDK.SendRecoveryEmail(ctx, email); err != nil {
		return "", err
	}
	return "Sent successfully", nil
}

// SetRecoveryEmail asks for an address and registers it for recovery.
func (l *Library) SetRecoveryEmail(ctx context.Context, st api.Store) (string, error) {
	email, err := bridge.PromptEmail(ctx, st)
	if err != nil {
		return "", err
	}
	if err := l.SDK.SetRecoveryEmail(ctx, email); err != nil {
		return "", err
	}
	return "Set successfully", nil
}

// GetLanguage shows the current language code.
func (l *Library) GetLanguage(ctx context.Context, _ api.Store) (string, error) {
	return l.SDK.GetLanguage(ctx)
}

// SetLanguage lets the user pick a language and shows the SDK's reply.
func (l *Library) SetLanguage(ctx context.Context, st api.Store) (string, error) {
	names := make([]string, len(Languages))
	for i, lang := range Languages {
		names[i] = lang.Name
	}

	choice, err := bridge.PresentSelection(ctx, st, names)
	if errors.Is(err, api.ErrNoSelection) {
		return "Failed to set language.", nil
	}
	if err != nil {
		return "", err
	}

	code := "en"
	for _, lang := range Languages {
		if lang.Name == choice {
			code = lang.Code
		}
	}
	return l.SDK.SetLanguage(ctx, code)
}
