package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sagtrack/internal/logtail"
)

// updateLogViewport updates the log viewport with current content.
func (m *Model) updateLogViewport() {
	if m.width == 0 {
		return
	}
	// Box inner height = content height (m.height - 2) minus the borders.
	width, height := m.width-4, maxInt(m.height-4, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())

	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) renderLogContent() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	if m.logErr != nil {
		return bg.Render(m.tr.Tf("logs.error", m.logErr.Error()), styles.DangerText)
	}
	if len(m.logEntries) == 0 {
		return bg.Render(m.tr.T("logs.empty"), styles.MutedText)
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, bg.Render(truncate(logtail.Format(e), m.logViewport.Width), m.levelStyle(e.Level, styles)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.Text
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := m.tr.T("logs.title")
	if m.logFile != "" {
		title += " · " + truncate(m.logFile, maxInt(m.width/2, 10))
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.height-2, true)
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleOption):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
			return m, readLogsCmd(m.logFile)
		}
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logFollow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logFollow = true
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logFollow = false
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logFollow = false
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logFollow = false
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logFollow = false
	}
	return m, nil
}
