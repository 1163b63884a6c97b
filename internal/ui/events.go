package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/sagapi"
)

// formatEventTime renders a timestamp in local time.
func formatEventTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func (m Model) eventList() []sagapi.Event {
	if m.events == nil {
		return nil
	}
	return m.events.Events()
}

// updateEventsViewport re-renders the history and keeps the selected event
// in view.
func (m *Model) updateEventsViewport() {
	if m.width == 0 {
		return
	}
	width := m.width - 4
	height := maxInt(m.height-4, 1)
	if m.eventsViewport.Width == 0 {
		m.eventsViewport = viewport.New(width, height)
	}
	m.eventsViewport.Width = width
	m.eventsViewport.Height = height
	m.eventsViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	events := m.eventList()
	m.selectedEvent = clampInt(m.selectedEvent, 0, maxInt(len(events)-1, 0))

	content, start, end := m.renderHistory(events, width)
	m.eventsViewport.SetContent(content)

	switch {
	case start < m.eventsViewport.YOffset:
		m.eventsViewport.SetYOffset(start)
	case end >= m.eventsViewport.YOffset+m.eventsViewport.Height:
		m.eventsViewport.SetYOffset(end - m.eventsViewport.Height + 1)
	}
}

// renderHistory renders every event with its changes. It returns the first
// and last line of the selected event.
func (m Model) renderHistory(events []sagapi.Event, width int) (string, int, int) {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	var lines []string
	if m.events != nil && m.events.Failed() {
		if len(events) == 0 {
			return bg.Render(m.tr.T("events.error"), styles.DangerText), 0, 0
		}
		// Stale log on screen: keep it, headed by the failure.
		lines = append(lines, bg.Render(m.tr.T("events.error"), styles.DangerText), "")
	}
	if len(events) == 0 {
		return bg.Render(m.tr.T("events.empty"), styles.MutedText), 0, 0
	}

	start, end := 0, 0
	for i, entry := range delta.History(events) {
		selected := i == m.selectedEvent
		if selected {
			start = len(lines)
		}
		lines = append(lines, m.historyEntry(entry, selected, width, styles, bg)...)
		if selected {
			end = len(lines) - 1
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n"), start, end
}

func (m Model) historyEntry(entry delta.Entry, selected bool, width int, styles Styles, bg BgStyle) []string {
	ev := entry.Event
	cursor := "  "
	timeStyle := styles.MutedText
	if selected {
		cursor = "> "
		timeStyle = styles.AccentText.Bold(true)
	}

	head := bg.Render(cursor, styles.AccentText) + bg.Render(formatEventTime(ev.Time()), timeStyle)
	if ev.IsResetSag() {
		head += bg.Spaces(2) + styles.Badge("reset").Render(m.tr.T("events.reset_sag"))
	}
	if n := len(ev.Comments); n > 0 {
		head += bg.Spaces(2) + bg.Render(m.tr.Tf("events.comment_count", n), styles.FaintText)
	}
	lines := []string{head}

	if !ev.IsResetSag() {
		if len(entry.Changes) == 0 {
			lines = append(lines, bg.Spaces(4)+bg.Render(m.tr.T("events.no_changes"), styles.FaintText))
		}
		for _, change := range entry.Changes {
			lines = append(lines, bg.Spaces(4)+m.renderCornerChange(change, styles, bg))
		}
	}
	if notes := strings.TrimSpace(ev.Data.Notes); notes != "" {
		for _, line := range wrapText(notes, maxInt(width-6, 10)) {
			lines = append(lines, bg.Spaces(4)+bg.Render(line, styles.InfoText))
		}
	}
	if selected {
		for _, line := range commentLines(ev.Comments) {
			lines = append(lines, bg.Spaces(6)+bg.Render(truncate(line, maxInt(width-8, 10)), styles.Text))
		}
	}
	return lines
}

// renderCornerChange colors one "FL: PRE +2 HSC -1" line.
func (m Model) renderCornerChange(change delta.CornerChange, styles Styles, bg BgStyle) string {
	parts := []string{bg.Render(change.Corner.Label()+":", styles.Indicator(string(change.Corner)).Bold(true))}
	for _, f := range change.Fields {
		style := styles.Text
		switch {
		case f.Sign > 0:
			style = styles.Indicator("increase")
		case f.Sign < 0:
			style = styles.Indicator("decrease")
		}
		parts = append(parts, bg.Render(delta.Abbr(f.Field), styles.MutedText)+bg.Space()+bg.Render(f.Text, style))
	}
	return strings.Join(parts, bg.Space())
}

// renderEvents renders the history view.
func (m Model) renderEvents() string {
	title := m.tr.T("events.title")
	if n := len(m.eventList()); n > 0 {
		title = m.tr.Tf("events.title_count", n)
	}
	return m.renderTitledBox(title, m.eventsViewport.View(), m.width, m.height-2, true)
}

func (m Model) selectedEventValue() (sagapi.Event, bool) {
	events := m.eventList()
	if m.selectedEvent < 0 || m.selectedEvent >= len(events) {
		return sagapi.Event{}, false
	}
	return events[m.selectedEvent], true
}

// handleEventsKey processes keyboard input for the events view.
func (m Model) handleEventsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.eventList())

	switch {
	case key.Matches(msg, m.keys.AddEvent):
		m.openEventForm(formEvent)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.SetInitial):
		m.openInitialForm()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ResetSag):
		m.modal = newConfirmDialog(confirmResetSag)
		return m, nil
	case key.Matches(msg, m.keys.Comment):
		if ev, ok := m.selectedEventValue(); ok {
			m.modal = newCommentForm(ev)
			return m, textinput.Blink
		}
		return m, nil
	case key.Matches(msg, m.keys.Markers):
		m.modal = newMarkerEditor(m.currentConfig(), m.liveView())
		return m, nil
	}

	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedEvent = clampInt(m.selectedEvent+1, 0, count-1)
	case key.Matches(msg, m.keys.Up):
		m.selectedEvent = clampInt(m.selectedEvent-1, 0, count-1)
	case key.Matches(msg, m.keys.Top):
		m.selectedEvent = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedEvent = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.eventsViewport.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.HalfPageUp):
		m.eventsViewport.HalfPageUp()
		return m, nil
	default:
		return m, nil
	}
	m.updateEventsViewport()
	return m, nil
}
