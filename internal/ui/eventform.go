package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/sagapi"
)

// formMode selects what the event form saves.
type formMode int

const (
	// formEvent appends a settings event.
	formEvent formMode = iota
	// formInitial stores the initial snapshot in the configuration.
	formInitial
)

// eventSubmitMsg carries a validated event form.
type eventSubmitMsg struct {
	mode    formMode
	springs sagapi.Springs
	notes   string
}

// eventForm is the 4x4 settings grid plus notes.
type eventForm struct {
	mode    formMode
	inputs  []textinput.Model
	notes   textinput.Model
	focus   int
	current sagapi.Springs
	config  sagapi.Configuration
	// invalid names the input that failed to parse, e.g. "FL PRE".
	invalid string
}

func newEventForm(mode formMode, current sagapi.Springs, cfg sagapi.Configuration) eventForm {
	inputs := make([]textinput.Model, 0, len(sagapi.Corners)*len(sagapi.Fields))
	for range sagapi.Corners {
		for range sagapi.Fields {
			ti := textinput.New()
			ti.Placeholder = "0"
			ti.CharLimit = 8
			ti.Width = 8
			ti.Prompt = ""
			inputs = append(inputs, ti)
		}
	}
	notes := textinput.New()
	notes.CharLimit = NotesLimit
	notes.Width = 40
	notes.Prompt = ""

	f := eventForm{
		mode:    mode,
		inputs:  inputs,
		notes:   notes,
		current: current,
		config:  cfg,
	}
	f.inputs[0].Focus()
	return f
}

func inputIndex(corner, field int) int {
	return corner*len(sagapi.Fields) + field
}

func (f eventForm) notesFocused() bool {
	return f.focus == len(f.inputs)
}

func (f *eventForm) setFocus(idx int) {
	total := len(f.inputs) + 1
	idx = (idx%total + total) % total
	if f.notesFocused() {
		f.notes.Blur()
	} else {
		f.inputs[f.focus].Blur()
	}
	f.focus = idx
	if f.notesFocused() {
		f.notes.Focus()
	} else {
		f.inputs[f.focus].Focus()
	}
}

func (f eventForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}

	// Letters must reach the inputs, so navigation only uses non-printing keys.
	switch keyMsg.Type {
	case tea.KeyEsc:
		return f, nil, true
	case tea.KeyCtrlS:
		return f.submit()
	case tea.KeyEnter:
		if f.notesFocused() {
			return f.submit()
		}
		f.setFocus(f.focus + 1)
		return f, nil, false
	case tea.KeyTab, tea.KeyDown:
		f.setFocus(f.focus + 1)
		return f, nil, false
	case tea.KeyShiftTab, tea.KeyUp:
		f.setFocus(f.focus - 1)
		return f, nil, false
	}

	var cmd tea.Cmd
	if f.notesFocused() {
		f.notes, cmd = f.notes.Update(keyMsg)
	} else {
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(keyMsg)
	}
	f.invalid = ""
	return f, cmd, false
}

func (f eventForm) submit() (Modal, tea.Cmd, bool) {
	springs, bad := f.values()
	if bad != "" {
		f.invalid = bad
		return f, nil, false
	}
	out := eventSubmitMsg{mode: f.mode, springs: springs, notes: strings.TrimSpace(f.notes.Value())}
	return f, func() tea.Msg { return out }, true
}

// values parses the grid. Blank inputs count as 0. On a parse failure it
// returns the label of the offending input.
func (f eventForm) values() (sagapi.Springs, string) {
	springs := make(sagapi.Springs, len(sagapi.Corners))
	for ci, corner := range sagapi.Corners {
		var setting sagapi.SpringSetting
		for fi, field := range sagapi.Fields {
			v, err := parseSetting(f.inputs[inputIndex(ci, fi)].Value())
			if err != nil {
				return nil, corner.Label() + " " + delta.Abbr(field)
			}
			setting = setting.Set(field, v)
		}
		springs[corner] = setting
	}
	return springs, ""
}

// parseSetting accepts "12", "-1.5" and the decimal comma form "1,5".
func parseSetting(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	return d.InexactFloat64(), nil
}

// currentHint is the "(value unit)" hint beside an input, or "" when the
// corner has no current settings.
func (f eventForm) currentHint(tr *i18n.Translator, corner sagapi.Corner, field sagapi.Field) string {
	setting, ok := f.current[corner]
	if !ok {
		return ""
	}
	return "(" + delta.FormatNum(setting.Value(field)) + " " + tr.Unit(f.config.UnitFor(corner, field)) + ")"
}

func (f eventForm) View(theme Theme, tr *i18n.Translator, width, height int) string {
	styles := theme.Styles()

	title := tr.T("event.modal.title")
	if f.mode == formInitial {
		title = tr.T("events.set_initial")
	}

	const labelWidth = 20
	const cellWidth = 22

	var b strings.Builder
	for ci, corner := range sagapi.Corners {
		b.WriteString(styles.Indicator(string(corner)).Bold(true).Render(tr.T("marker." + string(corner))))
		b.WriteString("\n")
		for fi, field := range sagapi.Fields {
			idx := inputIndex(ci, fi)
			label := padRight(tr.T("field."+string(field)), labelWidth)
			if idx == f.focus {
				b.WriteString(styles.AccentText.Render(label))
			} else {
				b.WriteString(styles.MutedText.Render(label))
			}
			b.WriteString(padRight(f.inputs[idx].View(), 10))
			b.WriteString(styles.FaintText.Render(padRight(f.currentHint(tr, corner, field), cellWidth)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	notesLabel := padRight(tr.T("event.notes"), labelWidth)
	if f.notesFocused() {
		b.WriteString(styles.AccentText.Render(notesLabel))
	} else {
		b.WriteString(styles.MutedText.Render(notesLabel))
	}
	b.WriteString(f.notes.View())
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("%s%d/%d", strings.Repeat(" ", labelWidth), len([]rune(f.notes.Value())), NotesLimit)))
	b.WriteString("\n\n")

	if f.invalid != "" {
		b.WriteString(styles.DangerText.Render(tr.Tf("event.invalid", f.invalid)))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render(tr.T("event.modal.hint")))

	return renderModal(theme, title, b.String(), 64, width, height)
}
