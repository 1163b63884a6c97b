package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sagtrack/internal/i18n"
)

// Modal is the interface for modal dialogs.
// Update returns the updated modal, a command, and whether the modal closes.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, tr *i18n.Translator, width, height int) string
}

// renderModal frames content in a rounded box centered on the screen.
func renderModal(theme Theme, title, content string, modalWidth, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", maxInt(modalWidth-6, 10))))
	b.WriteString("\n\n")
	b.WriteString(content)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// confirmAction names what a confirmation dialog guards.
type confirmAction int

const (
	confirmResetSag confirmAction = iota
	confirmResetUnits
)

// confirmedMsg is sent when the user accepts a confirmation dialog.
type confirmedMsg struct {
	action confirmAction
}

// confirmDialog asks a yes/no question.
type confirmDialog struct {
	action   confirmAction
	titleKey string
	bodyKey  string
}

func newConfirmDialog(action confirmAction) confirmDialog {
	switch action {
	case confirmResetUnits:
		return confirmDialog{action: action, titleKey: "settings.reset", bodyKey: "settings.reset.confirm"}
	default:
		return confirmDialog{action: action, titleKey: "events.reset_sag", bodyKey: "events.reset_sag.confirm"}
	}
}

func (d confirmDialog) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Yes), key.Matches(keyMsg, keys.Confirm):
		action := d.action
		return d, func() tea.Msg { return confirmedMsg{action: action} }, true
	case key.Matches(keyMsg, keys.No):
		return d, nil, true
	}
	return d, nil, false
}

func (d confirmDialog) View(theme Theme, tr *i18n.Translator, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(tr.T(d.bodyKey)) + "\n\n" +
		styles.WarningText.Render("y") + styles.MutedText.Render(" "+tr.T("common.yes")+"   ") +
		styles.WarningText.Render("n") + styles.MutedText.Render(" "+tr.T("common.no"))
	return renderModal(theme, tr.T(d.titleKey), body, 48, width, height)
}
