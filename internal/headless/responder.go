// Package headless answers a workflow's sheets from preset values so
// actions can run without a terminal UI.
package headless

import (
	"context"
	"strings"

	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/pkg/api"
)

// Responder holds the answers given to sheets.
type Responder struct {
	// Select picks the first chooser item equal to, or else containing,
	// this text. No match dismisses the sheet.
	Select string

	// Email is submitted to the email prompt. Empty cancels it.
	Email string

	// Statuses and SchemaIDs are applied to the credential filter, even
	// when both are empty. The filtered fetch then sends empty lists, which
	// the SDK treats as matching every status and schema.
	Statuses  []string
	SchemaIDs []string
}

// Attach answers sheets opened on st until ctx ends.
func (r *Responder) Attach(ctx context.Context, st api.Store) {
	signal := make(chan struct{}, 1)
	sub := st.Subscribe(func(api.Snapshot) {
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		defer sub.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				r.respond(st, st.Snapshot())
			}
		}
	}()
}

func (r *Responder) respond(st api.Store, s api.Snapshot) {
	ui := s.UI
	switch {
	case ui.ShowEmailInput:
		bridge.SubmitEmail(st, r.Email)
	case ui.ShowFilterSheet && ui.FilterResult == nil:
		bridge.ApplyFilter(st, api.NewFilterSelection(r.Statuses, r.SchemaIDs))
	case ui.ShowBottomSheet && ui.SelectedItem == nil:
		if item, ok := r.pick(ui.ChooserList); ok {
			bridge.Select(st, item)
		} else {
			bridge.HideSelection(st)
		}
	}
}

func (r *Responder) pick(items []string) (string, bool) {
	if r.Select == "" {
		return "", false
	}
	for _, it := range items {
		if it == r.Select {
			return it, true
		}
	}
	for _, it := range items {
		if strings.Contains(it, r.Select) {
			return it, true
		}
	}
	return "", false
}
