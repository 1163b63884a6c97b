package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

// renderHome renders the status panel, the vehicle diagram and the current
// settings table.
func (m Model) renderHome() string {
	contentHeight := m.height - 2
	settingsHeight := len(sagapi.Corners) + 5
	topHeight := maxInt(contentHeight-settingsHeight, markerDiagramHeight+2)

	var top string
	if m.width < LayoutCompactWidth {
		top = m.renderTitledBox(m.tr.T("home.status"), m.renderStatusPanel(m.width-4), m.width, topHeight, true)
	} else {
		leftWidth := m.width * 45 / 100
		rightWidth := m.width - leftWidth
		left := m.renderTitledBox(m.tr.T("home.status"), m.renderStatusPanel(leftWidth-4), leftWidth, topHeight, true)
		right := m.renderTitledBox(m.tr.T("home.vehicle"), m.renderVehiclePanel(), rightWidth, topHeight, false)
		top = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	bottom := m.renderTitledBox(m.tr.T("home.current"), m.renderCurrentSettings(m.width-4, m.theme.SurfaceAlt), m.width, settingsHeight, false)
	return top + "\n" + bottom
}

func (m Model) renderStatusPanel(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	status := state.ProjectStatus(m.snapshot)
	live := m.liveView()

	var lines []string
	headline := bg.Render(truncate(status.Headline, width), styles.Text.Bold(true))
	if status.Offline {
		headline += bg.Spaces(2) + styles.Badge("offline").Render(m.tr.T("status.offline"))
	}
	lines = append(lines, headline)
	if line := m.sessionLine(status); line != "" {
		lines = append(lines, bg.Render(truncate(line, width), styles.MutedText))
	} else {
		lines = append(lines, bg.Render(m.tr.T("home.session.empty"), styles.FaintText))
	}
	lines = append(lines, "")

	badge := live.Badge
	if badge == "" {
		badge = m.tr.T("home.no_live")
	}
	lines = append(lines, bg.Render(badge, styles.InfoText))
	lines = append(lines,
		bg.Render(m.tr.T("home.sag")+":", styles.MutedText)+bg.Space()+
			bg.Render(live.Sag, styles.AccentText.Bold(true)))
	lines = append(lines, "")

	for _, c := range sagapi.Corners {
		label := padRight(m.tr.T("marker."+string(c)), 18)
		lines = append(lines,
			bg.Render(label, styles.Indicator(string(c)))+bg.Render(live.Marker(c), styles.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderVehiclePanel() string {
	points := state.MarkerPoints(m.currentConfig())
	return renderDiagram(m.theme, points, "", markerDiagramWidth, markerDiagramHeight)
}

// renderCurrentSettings renders the FL/FR/RL/RR table, or the call to set
// initial settings when nothing has been recorded.
func (m Model) renderCurrentSettings(width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	springs, source := m.currentSettings()
	if source == state.SourceNone {
		return bg.Render(m.tr.T("events.set_initial"), styles.WarningText) + bg.Spaces(2) +
			bg.Render("(i)", styles.AccentText)
	}
	cfg := m.currentConfig()

	const nameWidth = 16
	colWidth := maxInt((width-nameWidth)/len(sagapi.Fields), 12)

	header := bg.Render(padRight("", nameWidth), styles.MutedText)
	for _, f := range sagapi.Fields {
		header += bg.Render(padRight(truncate(m.columnTitle(cfg, f), colWidth-1), colWidth), styles.MutedText)
	}
	lines := []string{header}

	for _, row := range state.SettingsRows(springs, cfg) {
		line := bg.Render(padRight(m.tr.T("marker."+string(row.Corner)), nameWidth), styles.Indicator(string(row.Corner)))
		for _, cell := range row.Cells {
			line += bg.Render(padRight(cell.Value+" "+m.tr.Unit(cell.Unit), colWidth), styles.Text)
		}
		lines = append(lines, line)
	}

	sourceLabel := m.tr.T("home.source.initial")
	if source == state.SourceEvent {
		if evs := m.events.Events(); len(evs) > 0 {
			sourceLabel = m.tr.Tf("home.source.event", formatEventTime(evs[0].Time()))
		}
	}
	lines = append(lines, bg.Render(sourceLabel, styles.FaintText))
	return strings.Join(lines, "\n")
}

// columnTitle is "<field> (<abbr>)", with " · <unit>" when every group shares
// the unit.
func (m Model) columnTitle(cfg sagapi.Configuration, f sagapi.Field) string {
	title := m.tr.T("field."+string(f)) + " (" + delta.Abbr(f) + ")"
	if unit := state.SharedUnit(cfg, f); unit != "" {
		title += " · " + m.tr.Unit(unit)
	}
	return title
}
