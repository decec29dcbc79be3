package bridge

import (
	"context"
	"errors"
	"slices"

	"github.com/petrijr/sessionflow/pkg/api"
)

// Wait names reported to observers.
const (
	WaitSelection = "selection"
	WaitEmail     = "email"
	WaitFilter    = "filter"
)

// WaitForSelection resolves with the chooser item the user picked.
//
// If the selection sheet is seen open and then closes with nothing
// selected, it resolves with api.ErrNoSelection instead of waiting forever.
func WaitForSelection(ctx context.Context, src Source) (string, error) {
	return waitForSelection(ctx, src, false)
}

// waitForSelection is WaitForSelection for a caller that may already have
// opened the sheet, in which case a closed sheet with nothing selected
// resolves at once.
func waitForSelection(ctx context.Context, src Source, opened bool) (string, error) {
	seenOpen := opened
	return observe(ctx, WaitSelection, func() (string, error) {
		return Await(ctx, src,
			func(s api.Snapshot) bool {
				if _, ok := s.UI.Selected(); ok {
					return true
				}
				if s.UI.ShowBottomSheet {
					seenOpen = true
					return false
				}
				return seenOpen
			},
			func(s api.Snapshot) (string, error) {
				if item, ok := s.UI.Selected(); ok {
					return item, nil
				}
				return "", api.ErrNoSelection
			},
		)
	})
}

// WaitForEmail resolves once the email prompt is closed. Closing the prompt
// is both submit and cancel: a non-empty email is returned, an empty one
// yields api.ErrUserCancelled.
func WaitForEmail(ctx context.Context, src Source) (string, error) {
	return observe(ctx, WaitEmail, func() (string, error) {
		return Await(ctx, src,
			func(s api.Snapshot) bool { return !s.UI.ShowEmailInput },
			func(s api.Snapshot) (string, error) {
				if s.Domain.Email == "" {
					return "", api.ErrUserCancelled
				}
				return s.Domain.Email, nil
			},
		)
	})
}

// WaitForFilter resolves once the filter sheet is closed, with whatever
// the sheet stored in FilterResult. A nil result means the user cancelled.
func WaitForFilter(ctx context.Context, src Source) (*api.FilterSelection, error) {
	return observe(ctx, WaitFilter, func() (*api.FilterSelection, error) {
		return Await(ctx, src,
			func(s api.Snapshot) bool { return !s.UI.ShowFilterSheet },
			func(s api.Snapshot) (*api.FilterSelection, error) { return s.UI.FilterResult, nil },
		)
	})
}

// PresentSelection opens the selection sheet with items, waits for a
// choice and closes the sheet again.
func PresentSelection(ctx context.Context, st api.Store, items []string) (string, error) {
	st.MutateUI(func(ui *api.UIState) {
		ui.ChooserList = slices.Clone(items)
		ui.SelectableItems = true
		ui.SelectedItem = nil
		ui.ShowBottomSheet = true
	})
	defer HideSelection(st)
	return waitForSelection(ctx, st, true)
}

// HideSelection closes the selection sheet and clears its contents.
func HideSelection(st api.Store) {
	st.MutateUI(func(ui *api.UIState) {
		ui.ChooserList = nil
		ui.SelectedItem = nil
		ui.ShowBottomSheet = false
	})
}

// Select is what a presenter calls when the user picks an item.
func Select(st api.Store, item string) {
	st.MutateUI(func(ui *api.UIState) {
		v := item
		ui.SelectedItem = &v
	})
}

// PromptEmail opens the email prompt and waits for it to close.
func PromptEmail(ctx context.Context, st api.Store) (string, error) {
	st.MutateUI(func(ui *api.UIState) { ui.ShowEmailInput = true })
	email, err := WaitForEmail(ctx, st)
	if errors.Is(err, api.ErrCancelled) {
		// The wait was abandoned; do not leave the prompt on screen.
		st.MutateUI(func(ui *api.UIState) { ui.ShowEmailInput = false })
	}
	return email, err
}

// PresentCredentialsFilter stashes creds for the filter sheet, opens it,
// waits for it to close and consumes the result. A nil selection means the
// user cancelled the filter.
func PresentCredentialsFilter(ctx context.Context, st api.Store, creds []api.Credential) (*api.FilterSelection, error) {
	st.MutateUI(func(ui *api.UIState) {
		ui.FilterCandidates = slices.Clone(creds)
		ui.FilterResult = nil
		ui.ShowFilterSheet = true
	})
	sel, err := WaitForFilter(ctx, st)

	// The result is read once.
	st.MutateUI(func(ui *api.UIState) {
		ui.FilterResult = nil
		ui.FilterCandidates = nil
		ui.ShowFilterSheet = false
	})
	return sel, err
}

// ApplyFilter is what the filter sheet calls on apply. Passing nil cancels.
func ApplyFilter(st api.Store, sel *api.FilterSelection) {
	st.MutateUI(func(ui *api.UIState) {
		ui.FilterResult = sel
		ui.ShowFilterSheet = false
	})
}

// SubmitEmail is what the email prompt calls when it closes. An empty
// email is a cancel.
func SubmitEmail(st api.Store, email string) {
	st.Mutate(func(ui *api.UIState, d *api.DomainState) {
		d.Email = email
		ui.ShowEmailInput = false
	})
}
