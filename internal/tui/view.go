package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	groupStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sheetStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	alertStyle    = sheetStyle.BorderForeground(lipgloss.Color("13"))
	helpStyle     = dimStyle
	maskCharacter = "*"
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sessionflow"))
	b.WriteString("\n")
	b.WriteString(a.renderDomain())
	b.WriteString("\n\n")

	switch a.mode() {
	case modeConfigure:
		b.WriteString(a.renderConfigure())
	case modeQR:
		b.WriteString(a.renderInput("Scan QR code", "Path to a QR image", a.input))
	case modeEmail:
		b.WriteString(a.renderInput("Recovery email", "Email address", a.input))
	case modeFilter:
		b.WriteString(a.renderFilter())
	case modeChooser:
		b.WriteString(a.renderChooser())
	case modeAlert:
		b.WriteString(alertStyle.Render(a.snap.UI.AlertMessage + "\n\n" + helpStyle.Render("[enter] OK")))
	default:
		b.WriteString(a.renderMenu())
	}

	if a.snap.UI.Requesting {
		b.WriteString("\n" + statusStyle.Render("working... [x] cancel"))
	}
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return b.String()
}

func (a *App) renderDomain() string {
	d := a.snap.Domain
	addr := d.DigitalAddress
	if addr == "" {
		addr = "not linked"
	}
	line := "Digital address: " + addr
	if d.LinkDeviceID != "" {
		line += "  device: " + d.LinkDeviceID
	}
	if d.TransactionID != "" {
		line += "  transaction: " + d.TransactionID
	}
	return dimStyle.Render(line)
}

func (a *App) renderMenu() string {
	var b strings.Builder
	group := ""
	for i, e := range a.menu {
		if e.group != group {
			if group != "" {
				b.WriteString("\n")
			}
			group = e.group
			b.WriteString(groupStyle.Render(group) + "\n")
		}
		title := a.catalog.Title(e.action)
		if i == a.cursor {
			b.WriteString(cursorStyle.Render("> "+title) + "\n")
		} else {
			b.WriteString("  " + title + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("[enter] run  [j/k] move  [q] quit"))
	return b.String()
}

func (a *App) renderChooser() string {
	var b strings.Builder
	for i, item := range a.snap.UI.ChooserList {
		if i == a.sheetCursor {
			b.WriteString(cursorStyle.Render("> "+item) + "\n")
		} else {
			b.WriteString("  " + item + "\n")
		}
	}
	if len(a.snap.UI.ChooserList) == 0 {
		b.WriteString(dimStyle.Render("nothing to choose") + "\n")
	}
	b.WriteString(helpStyle.Render("[enter] choose  [esc] dismiss"))
	return sheetStyle.Render(b.String())
}

func (a *App) renderFilter() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Filter credentials") + "\n")
	for i, r := range a.filter.rows {
		box := "[ ]"
		if a.filter.checked[i] {
			box = "[x]"
		}
		kind := "status"
		if r.kind == filterSchema {
			kind = "schema"
		}
		line := fmt.Sprintf("%s %s %s", box, dimStyle.Render(kind), r.label)
		if i == a.filter.cursor {
			line = cursorStyle.Render(">") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(helpStyle.Render("[space] toggle  [enter] apply  [esc] cancel"))
	return sheetStyle.Render(b.String())
}

func (a *App) renderInput(title, label, value string) string {
	body := titleStyle.Render(title) + "\n" + label + ": " + value + cursorStyle.Render("_") +
		"\n" + helpStyle.Render("[enter] submit  [esc] cancel")
	return sheetStyle.Render(body)
}

func (a *App) renderConfigure() string {
	fields := []struct {
		label string
		value string
	}{
		{"Client ID", a.clientID},
		{"Secret", strings.Repeat(maskCharacter, len([]rune(a.secret)))},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Configure SDK") + "\n")
	for i, f := range fields {
		prefix := "  "
		if i == a.configField {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + f.label + ": " + f.value + "\n")
	}
	b.WriteString(helpStyle.Render("[tab] next field  [enter] configure  [esc] close"))
	return sheetStyle.Render(b.String())
}
