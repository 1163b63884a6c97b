package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

const (
	markerStep     = 1.0
	markerFastStep = 10.0
)

// markerSubmitMsg asks the model to persist one marker.
type markerSubmitMsg struct {
	corner sagapi.Corner
	pos    sagapi.Position
}

// markerEditor moves one marker at a time on the vehicle diagram.
type markerEditor struct {
	points   map[sagapi.Corner]state.MarkerPoint
	selected int
	live     state.LiveView
}

func newMarkerEditor(cfg sagapi.Configuration, live state.LiveView) markerEditor {
	return markerEditor{points: state.MarkerPoints(cfg), live: live}
}

func (e markerEditor) corner() sagapi.Corner {
	return sagapi.Corners[e.selected]
}

func (e *markerEditor) move(dx, dy float64) {
	c := e.corner()
	p := e.points[c]
	p.Left = state.ClampPercent(p.Left + dx)
	p.Top = state.ClampPercent(p.Top + dy)
	e.points[c] = p
}

func (e markerEditor) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, false
	}
	// Copy-on-write so the caller's previous value stays intact.
	points := make(map[sagapi.Corner]state.MarkerPoint, len(e.points))
	for k, v := range e.points {
		points[k] = v
	}
	e.points = points

	switch {
	case key.Matches(keyMsg, keys.Escape):
		return e, nil, true
	case key.Matches(keyMsg, keys.Tab):
		e.selected = (e.selected + 1) % len(sagapi.Corners)
	case key.Matches(keyMsg, keys.ShiftTab):
		e.selected = (e.selected + len(sagapi.Corners) - 1) % len(sagapi.Corners)
	case key.Matches(keyMsg, keys.FastLeft):
		e.move(-markerFastStep, 0)
	case key.Matches(keyMsg, keys.FastRight):
		e.move(markerFastStep, 0)
	case key.Matches(keyMsg, keys.FastUp):
		e.move(0, -markerFastStep)
	case key.Matches(keyMsg, keys.FastDown):
		e.move(0, markerFastStep)
	case key.Matches(keyMsg, keys.Left):
		e.move(-markerStep, 0)
	case key.Matches(keyMsg, keys.Right):
		e.move(markerStep, 0)
	case key.Matches(keyMsg, keys.Up):
		e.move(0, -markerStep)
	case key.Matches(keyMsg, keys.Down):
		e.move(0, markerStep)
	case key.Matches(keyMsg, keys.Confirm), key.Matches(keyMsg, keys.Save):
		out := markerSubmitMsg{corner: e.corner(), pos: e.points[e.corner()].Position()}
		return e, func() tea.Msg { return out }, false
	}
	return e, nil, false
}

// cell maps a percentage point to a diagram cell.
func markerCell(p state.MarkerPoint, w, h int) (int, int) {
	x := int(p.Left/100*float64(w-1) + 0.5)
	y := int(p.Top/100*float64(h-1) + 0.5)
	return clampInt(x, 0, w-1), clampInt(y, 0, h-1)
}

// renderDiagram draws the markers on a w x h grid. The selected corner is
// drawn in upper case.
func renderDiagram(theme Theme, points map[sagapi.Corner]state.MarkerPoint, selected sagapi.Corner, w, h int) string {
	styles := theme.Styles()
	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
		for x := range grid[y] {
			grid[y][x] = styles.FaintText.Render("·")
		}
	}
	for _, c := range sagapi.Corners {
		p, ok := points[c]
		if !ok {
			continue
		}
		x, y := markerCell(p, w, h)
		glyph := "●"
		style := styles.Indicator(string(c))
		if c == selected {
			glyph = "◉"
			style = style.Bold(true).Underline(true)
		}
		grid[y][x] = style.Render(glyph)
	}
	lines := make([]string, h)
	for y, row := range grid {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

func (e markerEditor) View(theme Theme, tr *i18n.Translator, width, height int) string {
	styles := theme.Styles()
	selected := e.corner()

	var b strings.Builder
	b.WriteString(renderDiagram(theme, e.points, selected, markerDiagramWidth, markerDiagramHeight))
	b.WriteString("\n\n")
	for _, c := range sagapi.Corners {
		p := e.points[c]
		label := padRight(tr.T("marker."+string(c)), 18)
		line := fmt.Sprintf("%s %6s %6s  %s", label, state.FormatPercent(p.Left), state.FormatPercent(p.Top), e.live.Marker(c))
		if c == selected {
			b.WriteString(styles.Indicator(string(c)).Bold(true).Render("> " + line))
		} else {
			b.WriteString(styles.MutedText.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(tr.T("markers.hint")))

	return renderModal(theme, tr.T("markers.title"), b.String(), markerDiagramWidth+24, width, height)
}
