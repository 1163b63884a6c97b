package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/sagapi"
)

func TestParseSetting(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"12", 12, false},
		{"-1.5", -1.5, false},
		{"1,5", 1.5, false},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSetting(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSetting(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSetting(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func typeInto(t *testing.T, m Modal, text string) Modal {
	t.Helper()
	for _, r := range text {
		m, _, _ = m.Update(runeKey(string(r)), DefaultKeyMap())
	}
	return m
}

func TestEventForm_BlankInputsSubmitAsZero(t *testing.T) {
	keys := DefaultKeyMap()
	var m Modal = newEventForm(formEvent, nil, sagapi.Configuration{})

	m = typeInto(t, m, "3")
	m, _, _ = m.Update(typeKey(tea.KeyTab), keys)
	m = typeInto(t, m, "1,5")

	_, cmd, closed := m.Update(typeKey(tea.KeyCtrlS), keys)
	if !closed {
		t.Fatal("expected form to close on save")
	}
	msg, ok := cmd().(eventSubmitMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want eventSubmitMsg", cmd())
	}
	if msg.mode != formEvent {
		t.Fatalf("mode = %v", msg.mode)
	}
	want := sagapi.Springs{
		sagapi.CornerFL: {Preload: 3, CompFast: 1.5},
		sagapi.CornerFR: {},
		sagapi.CornerRL: {},
		sagapi.CornerRR: {},
	}
	if diff := cmp.Diff(want, msg.springs); diff != "" {
		t.Fatalf("springs mismatch (-want +got):\n%s", diff)
	}
}

func TestEventForm_InvalidInputNamesField(t *testing.T) {
	keys := DefaultKeyMap()
	var m Modal = newEventForm(formEvent, nil, sagapi.Configuration{})
	// Move to FR rebound: corner 1, field 3.
	for i := 0; i < inputIndex(1, 3); i++ {
		m, _, _ = m.Update(typeKey(tea.KeyTab), keys)
	}
	m = typeInto(t, m, "x")

	m, cmd, closed := m.Update(typeKey(tea.KeyCtrlS), keys)
	if closed || cmd != nil {
		t.Fatal("invalid form must stay open without a command")
	}
	form := m.(eventForm)
	if form.invalid != "FR Rebound" {
		t.Fatalf("invalid = %q, want FR Rebound", form.invalid)
	}
}

func TestEventForm_NotesAndEnterOnNotesSubmits(t *testing.T) {
	keys := DefaultKeyMap()
	var m Modal = newEventForm(formInitial, nil, sagapi.Configuration{})
	m, _, _ = m.Update(typeKey(tea.KeyShiftTab), keys)
	if !m.(eventForm).notesFocused() {
		t.Fatal("shift+tab from the first input should wrap to notes")
	}
	m = typeInto(t, m, "baseline")

	_, cmd, closed := m.Update(typeKey(tea.KeyEnter), keys)
	if !closed || cmd == nil {
		t.Fatal("enter on notes should submit")
	}
	msg := cmd().(eventSubmitMsg)
	if msg.mode != formInitial || msg.notes != "baseline" {
		t.Fatalf("submit = %+v", msg)
	}
}

func TestEventForm_EscCloses(t *testing.T) {
	_, cmd, closed := newEventForm(formEvent, nil, sagapi.Configuration{}).Update(typeKey(tea.KeyEsc), DefaultKeyMap())
	if !closed || cmd != nil {
		t.Fatal("esc should close without a command")
	}
}

func TestEventForm_CurrentHintUsesUnits(t *testing.T) {
	tr := i18n.MustNew("fi")
	cfg := sagapi.Configuration{RL: &sagapi.UnitPref{PreloadUnit: "turns", DampingUnit: "turns"}}
	current := sagapi.Springs{sagapi.CornerRL: {Preload: 2.5, Rebound: 8}}
	f := newEventForm(formEvent, current, cfg)

	if got := f.currentHint(tr, sagapi.CornerRL, sagapi.FieldPreload); got != "(2.5 kierrosta)" {
		t.Fatalf("hint = %q", got)
	}
	if got := f.currentHint(tr, sagapi.CornerFL, sagapi.FieldPreload); got != "" {
		t.Fatalf("hint for corner without settings = %q", got)
	}
}
