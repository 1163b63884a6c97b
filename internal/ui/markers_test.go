package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

func TestMarkerEditor_StepsAndClamps(t *testing.T) {
	keys := DefaultKeyMap()
	var m Modal = newMarkerEditor(sagapi.Configuration{}, state.LiveView{})

	// FL starts at 25/25.
	m, _, _ = m.Update(runeKey("l"), keys)
	m, _, _ = m.Update(runeKey("J"), keys)
	p := m.(markerEditor).points[sagapi.CornerFL]
	if p.Left != 26 || p.Top != 35 {
		t.Fatalf("FL = %+v, want 26/35", p)
	}

	for i := 0; i < 5; i++ {
		m, _, _ = m.Update(runeKey("H"), keys)
	}
	p = m.(markerEditor).points[sagapi.CornerFL]
	if p.Left != 0 {
		t.Fatalf("Left = %v, want clamped to 0", p.Left)
	}

	for i := 0; i < 12; i++ {
		m, _, _ = m.Update(typeKey(tea.KeyShiftDown), keys)
	}
	p = m.(markerEditor).points[sagapi.CornerFL]
	if p.Top != 100 {
		t.Fatalf("Top = %v, want clamped to 100", p.Top)
	}
}

func TestMarkerEditor_DoesNotMutatePrevious(t *testing.T) {
	before := newMarkerEditor(sagapi.Configuration{}, state.LiveView{})
	_, _, _ = before.Update(runeKey("l"), DefaultKeyMap())
	if got := before.points[sagapi.CornerFL].Left; got != 25 {
		t.Fatalf("previous editor changed: Left = %v", got)
	}
}

func TestMarkerEditor_SaveEmitsSelectedCorner(t *testing.T) {
	keys := DefaultKeyMap()
	cfg := sagapi.Configuration{Markers: map[sagapi.Corner]sagapi.Position{
		sagapi.CornerFR: {Left: "60%", Top: "12.5%"},
	}}
	var m Modal = newMarkerEditor(cfg, state.LiveView{})
	m, _, _ = m.Update(typeKey(tea.KeyTab), keys)
	m, _, _ = m.Update(runeKey("k"), keys)

	_, cmd, closed := m.Update(typeKey(tea.KeyEnter), keys)
	if closed {
		t.Fatal("saving a marker keeps the editor open")
	}
	msg, ok := cmd().(markerSubmitMsg)
	if !ok {
		t.Fatalf("cmd returned %T", cmd())
	}
	if msg.corner != sagapi.CornerFR {
		t.Fatalf("corner = %s", msg.corner)
	}
	if msg.pos != (sagapi.Position{Left: "60%", Top: "11.5%"}) {
		t.Fatalf("pos = %+v", msg.pos)
	}
}

func TestMarkerEditor_ShiftTabWraps(t *testing.T) {
	m, _, _ := newMarkerEditor(sagapi.Configuration{}, state.LiveView{}).Update(typeKey(tea.KeyShiftTab), DefaultKeyMap())
	if got := m.(markerEditor).corner(); got != sagapi.CornerRR {
		t.Fatalf("corner = %s, want rr", got)
	}
}

func TestMarkerCell(t *testing.T) {
	tests := []struct {
		p      state.MarkerPoint
		wx, wy int
	}{
		{state.MarkerPoint{Left: 0, Top: 0}, 0, 0},
		{state.MarkerPoint{Left: 100, Top: 100}, 40, 12},
		{state.MarkerPoint{Left: 50, Top: 50}, 20, 6},
	}
	for _, tt := range tests {
		x, y := markerCell(tt.p, 41, 13)
		if x != tt.wx || y != tt.wy {
			t.Errorf("markerCell(%+v) = %d,%d want %d,%d", tt.p, x, y, tt.wx, tt.wy)
		}
	}
}

func TestRenderDiagram_DrawsEveryCorner(t *testing.T) {
	out := renderDiagram(GetTheme("Nightfox"), state.MarkerPoints(sagapi.Configuration{}), sagapi.CornerRL, markerDiagramWidth, markerDiagramHeight)
	if got := strings.Count(out, "●"); got != 3 {
		t.Fatalf("unselected markers = %d, want 3", got)
	}
	if got := strings.Count(out, "◉"); got != 1 {
		t.Fatalf("selected markers = %d, want 1", got)
	}
	if got := len(strings.Split(out, "\n")); got != markerDiagramHeight {
		t.Fatalf("rows = %d", got)
	}
}

func TestMarkerEditor_NonFiniteStoredMarkerUsesDefault(t *testing.T) {
	cfg := sagapi.Configuration{Markers: map[sagapi.Corner]sagapi.Position{
		sagapi.CornerFL: {Left: "NaN%", Top: "20%"},
	}}
	e := newMarkerEditor(cfg, state.LiveView{})
	if p := e.points[sagapi.CornerFL]; p.Left != 25 || p.Top != 25 {
		t.Fatalf("FL = %+v, want default 25/25", p)
	}
	if out := e.View(GetTheme(""), i18n.MustNew("en"), 100, 40); strings.Contains(out, "NaN") {
		t.Fatalf("view shows NaN:\n%s", out)
	}
}
