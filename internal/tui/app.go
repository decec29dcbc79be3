// Package tui is the terminal front end of a session. It renders the
// store's UI state and writes user decisions back through the bridge.
package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/petrijr/sessionflow"
	"github.com/petrijr/sessionflow/internal/bridge"
	"github.com/petrijr/sessionflow/pkg/api"
	"github.com/petrijr/sessionflow/pkg/workflows"
)

// Runner starts actions. *sessionflow.Session satisfies it.
type Runner interface {
	Trigger(ctx context.Context, action string) (string, error)
}

// Options wires an App to a session.
type Options struct {
	Store   api.Store
	Runner  Runner
	Catalog *sessionflow.Catalog
	// Prompt answers QR scans started by workflows. May be nil when no
	// scanner is wired.
	Prompt *PathPrompt
	// Cancel aborts the active workflow.
	Cancel func()
}

type menuEntry struct {
	group  string
	action string
}

// App is the bubbletea model for a session.
type App struct {
	ctx     context.Context
	store   api.Store
	runner  Runner
	catalog *sessionflow.Catalog
	prompt  *PathPrompt
	cancel  func()

	changes <-chan struct{}
	sub     api.Subscription
	done    chan struct{}

	snap   api.Snapshot
	menu   []menuEntry
	cursor int
	status string

	// chooser and filter sheets
	sheetCursor int
	filter      filterSheet

	// text inputs
	input       string
	configField int
	clientID    string
	secret      string
}

// New subscribes to opts.Store and returns the model. Call Close when the
// program exits.
func New(ctx context.Context, opts Options) *App {
	cat := opts.Catalog
	if cat == nil {
		cat = sessionflow.DefaultCatalog()
	}
	a := &App{
		ctx:     ctx,
		store:   opts.Store,
		runner:  opts.Runner,
		catalog: cat,
		prompt:  opts.Prompt,
		cancel:  opts.Cancel,
		done:    make(chan struct{}),
	}
	for _, g := range cat.Groups() {
		for _, action := range g.Actions {
			a.menu = append(a.menu, menuEntry{group: g.Name, action: action})
		}
	}
	a.changes, a.sub = watch(opts.Store)
	a.apply(opts.Store.Snapshot())
	return a
}

// Close stops listening to the store.
func (a *App) Close() {
	select {
	case <-a.done:
		return
	default:
	}
	close(a.done)
	a.sub.Cancel()
}

type stateMsg api.Snapshot

type statusMsg string

func (a *App) Init() tea.Cmd {
	return a.waitForChange()
}

// waitForChange delivers the latest snapshot after the next mutation.
func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.changes:
			return stateMsg(a.store.Snapshot())
		case <-a.done:
			return nil
		}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case stateMsg:
		a.apply(api.Snapshot(m))
		return a, a.waitForChange()
	case statusMsg:
		a.status = string(m)
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			a.Close()
			return a, tea.Quit
		}
		cmd := a.handleKey(m)
		// Keys mutate the store synchronously; the next key must see it.
		a.apply(a.store.Snapshot())
		return a, cmd
	}
	return a, nil
}

// apply takes a new snapshot and prepares inputs for sheets that just
// opened.
func (a *App) apply(s api.Snapshot) {
	prev := a.snap
	a.snap = s

	if s.UI.ShowEmailInput && !prev.UI.ShowEmailInput {
		a.input = s.Domain.Email
	}
	if s.UI.QRPrompt && !prev.UI.QRPrompt {
		a.input = ""
	}
	if s.UI.ShowConfigureSheet && !prev.UI.ShowConfigureSheet {
		a.clientID, a.secret, a.configField = s.Domain.ClientID, s.Domain.Secret, 0
	}
	if s.UI.ShowBottomSheet && !prev.UI.ShowBottomSheet {
		a.sheetCursor = 0
	}
	if s.UI.ShowFilterSheet && !prev.UI.ShowFilterSheet {
		a.filter = newFilterSheet(s.UI.FilterCandidates)
	}
}

type mode int

const (
	modeMenu mode = iota
	modeAlert
	modeChooser
	modeFilter
	modeEmail
	modeQR
	modeConfigure
)

// mode picks the surface that owns the keyboard. Sheets a workflow is
// waiting on come first, then the alert, so a failed configure reports
// before the form takes input again.
func (a *App) mode() mode {
	ui := a.snap.UI
	switch {
	case ui.QRPrompt && a.prompt != nil:
		return modeQR
	case ui.ShowEmailInput:
		return modeEmail
	case ui.ShowFilterSheet:
		return modeFilter
	case ui.ShowBottomSheet:
		return modeChooser
	case ui.ShowAlert:
		return modeAlert
	case ui.ShowConfigureSheet:
		return modeConfigure
	default:
		return modeMenu
	}
}

func (a *App) handleKey(k tea.KeyMsg) tea.Cmd {
	switch a.mode() {
	case modeConfigure:
		return a.configureKey(k)
	case modeQR:
		a.qrKey(k)
	case modeEmail:
		a.emailKey(k)
	case modeFilter:
		a.filterKey(k)
	case modeChooser:
		a.chooserKey(k)
	case modeAlert:
		switch k.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			a.store.MutateUI(func(ui *api.UIState) { ui.ShowAlert = false })
		}
	default:
		return a.menuKey(k)
	}
	return nil
}

func (a *App) menuKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "q":
		a.Close()
		return tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.menu)-1 {
			a.cursor++
		}
	case "x":
		if a.cancel != nil && a.snap.UI.Requesting {
			a.cancel()
			a.status = "cancelling..."
		}
	case "enter":
		if len(a.menu) == 0 {
			return nil
		}
		action := a.menu[a.cursor].action
		if action == workflows.ActionConfigure {
			a.store.MutateUI(func(ui *api.UIState) { ui.ShowConfigureSheet = true })
			return nil
		}
		return a.trigger(action)
	}
	return nil
}

func (a *App) trigger(action string) tea.Cmd {
	a.status = ""
	return func() tea.Msg {
		if _, err := a.runner.Trigger(a.ctx, action); err != nil {
			if errors.Is(err, api.ErrBusy) {
				return statusMsg("another action is still running")
			}
			return statusMsg("error: " + err.Error())
		}
		return statusMsg("")
	}
}

func (a *App) chooserKey(k tea.KeyMsg) {
	items := a.snap.UI.ChooserList
	switch k.String() {
	case "up", "k":
		if a.sheetCursor > 0 {
			a.sheetCursor--
		}
	case "down", "j":
		if a.sheetCursor < len(items)-1 {
			a.sheetCursor++
		}
	case "enter":
		if a.snap.UI.SelectableItems && a.sheetCursor < len(items) {
			bridge.Select(a.store, items[a.sheetCursor])
		}
	case "esc", "q":
		bridge.HideSelection(a.store)
	}
}

func (a *App) filterKey(k tea.KeyMsg) {
	switch k.String() {
	case "up", "k":
		a.filter.up()
	case "down", "j":
		a.filter.down()
	case " ", "space":
		a.filter.toggle()
	case "enter":
		bridge.ApplyFilter(a.store, a.filter.selection())
	case "esc":
		bridge.ApplyFilter(a.store, nil)
	}
}

func (a *App) emailKey(k tea.KeyMsg) {
	switch k.Type {
	case tea.KeyEnter:
		bridge.SubmitEmail(a.store, strings.TrimSpace(a.input))
	case tea.KeyEsc:
		bridge.SubmitEmail(a.store, "")
	default:
		a.input = edit(a.input, k)
	}
}

func (a *App) qrKey(k tea.KeyMsg) {
	switch k.Type {
	case tea.KeyEnter:
		a.prompt.Answer(strings.TrimSpace(a.input))
	case tea.KeyEsc:
		a.prompt.Answer("")
	default:
		a.input = edit(a.input, k)
	}
}

func (a *App) configureKey(k tea.KeyMsg) tea.Cmd {
	switch k.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		a.configField = 1 - a.configField
	case tea.KeyEsc:
		a.store.MutateUI(func(ui *api.UIState) { ui.ShowConfigureSheet = false })
	case tea.KeyEnter:
		id, secret := strings.TrimSpace(a.clientID), strings.TrimSpace(a.secret)
		if id == "" || secret == "" {
			a.status = "client id and secret are required"
			return nil
		}
		a.store.MutateDomain(func(d *api.DomainState) {
			d.ClientID = id
			d.Secret = secret
		})
		// The configure action closes the sheet once the SDK accepts the
		// credentials.
		return a.trigger(workflows.ActionConfigure)
	default:
		if a.configField == 0 {
			a.clientID = edit(a.clientID, k)
		} else {
			a.secret = edit(a.secret, k)
		}
	}
	return nil
}

// edit applies a typing key to s.
func edit(s string, k tea.KeyMsg) string {
	switch k.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if r := []rune(s); len(r) > 0 {
			return string(r[:len(r)-1])
		}
	case tea.KeySpace:
		return s + " "
	case tea.KeyRunes:
		return s + string(k.Runes)
	}
	return s
}
