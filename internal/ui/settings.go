package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/five82/sagtrack/internal/sagapi"
)

// settingsRow is one editable unit preference.
type settingsRow struct {
	group   string
	damping bool
}

// settingsRows lists group x {preload, damping} in display order.
var settingsRows = lo.FlatMap(sagapi.Groups, func(g string, _ int) []settingsRow {
	return []settingsRow{{group: g}, {group: g, damping: true}}
})

func (r settingsRow) options() []string {
	if r.damping {
		return sagapi.DampingUnits
	}
	return sagapi.PreloadUnits
}

// value resolves the row's unit in cfg, applying the default when unset.
func (r settingsRow) value(cfg sagapi.Configuration) string {
	pref := cfg.Group(r.group)
	switch {
	case pref != nil && r.damping && pref.DampingUnit != "":
		return pref.DampingUnit
	case pref != nil && !r.damping && pref.PreloadUnit != "":
		return pref.PreloadUnit
	case r.damping:
		return sagapi.DefaultDampingUnit
	default:
		return sagapi.DefaultPreloadUnit
	}
}

// cycle returns cfg with the row's unit moved step options along. Both units
// of the group are written so the saved group is complete.
func (r settingsRow) cycle(cfg sagapi.Configuration, step int) sagapi.Configuration {
	opts := r.options()
	idx := lo.IndexOf(opts, r.value(cfg))
	next := opts[((idx+step)%len(opts)+len(opts))%len(opts)]
	if idx < 0 && step < 0 {
		next = opts[len(opts)-1]
	}

	pref := sagapi.UnitPref{
		PreloadUnit: settingsRow{group: r.group}.value(cfg),
		DampingUnit: settingsRow{group: r.group, damping: true}.value(cfg),
	}
	if r.damping {
		pref.DampingUnit = next
	} else {
		pref.PreloadUnit = next
	}
	return cfg.SetGroup(r.group, pref)
}

// unitsOnly strips everything but unit preferences, so saving the draft
// cannot overwrite markers or the initial snapshot.
func unitsOnly(cfg sagapi.Configuration) sagapi.Configuration {
	out := sagapi.Configuration{}
	for _, g := range sagapi.Groups {
		if pref := cfg.Group(g); pref != nil {
			out = out.SetGroup(g, *pref)
		}
	}
	return out
}

// handleSettingsKey processes keyboard input for the settings view.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := settingsRows[m.settingsRow]
	switch {
	case key.Matches(msg, m.keys.Down):
		m.settingsRow = clampInt(m.settingsRow+1, 0, len(settingsRows)-1)
	case key.Matches(msg, m.keys.Up):
		m.settingsRow = clampInt(m.settingsRow-1, 0, len(settingsRows)-1)
	case key.Matches(msg, m.keys.CycleOption), key.Matches(msg, m.keys.Right):
		m.unitsDraft = row.cycle(m.unitsDraft, 1)
		m.unitsDirty = true
	case key.Matches(msg, m.keys.Left):
		m.unitsDraft = row.cycle(m.unitsDraft, -1)
		m.unitsDirty = true
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Save):
		if m.config == nil {
			return m, nil
		}
		m.unitsDirty = false
		return m, saveUnitsCmd(m.ctx, m.config, m.events, unitsOnly(m.unitsDraft))
	case key.Matches(msg, m.keys.ResetUnits):
		m.modal = newConfirmDialog(confirmResetUnits)
	}
	return m, nil
}

// renderSettings renders the unit preference editor.
func (m Model) renderSettings() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	const labelWidth = 34

	var lines []string
	for i, row := range settingsRows {
		if i > 0 && !row.damping {
			lines = append(lines, "")
		}
		label := m.tr.T("group."+row.group) + " · " + m.tr.T("settings.preload_unit")
		if row.damping {
			label = m.tr.T("group."+row.group) + " · " + m.tr.T("settings.damping_unit")
		}

		current := row.value(m.unitsDraft)
		choices := lo.Map(row.options(), func(opt string, _ int) string {
			text := m.tr.Unit(opt)
			if opt == current {
				return bg.Render("["+text+"]", styles.AccentText.Bold(true))
			}
			return bg.Render(" "+text+" ", styles.MutedText)
		})
		if !lo.Contains(row.options(), current) {
			choices = append(choices, bg.Render("["+current+"]", styles.WarningText))
		}

		cursor, labelStyle := "  ", styles.Text
		if i == m.settingsRow {
			cursor, labelStyle = "> ", styles.AccentText
		}
		lines = append(lines,
			bg.Render(cursor, styles.AccentText)+bg.Render(padRight(label, labelWidth), labelStyle)+
				strings.Join(choices, bg.Space()))
	}

	lines = append(lines, "")
	if m.unitsDirty {
		lines = append(lines, bg.Render(m.tr.T("settings.unsaved"), styles.WarningText))
	}
	lines = append(lines, bg.Render(m.tr.T("settings.hint"), styles.FaintText))

	return m.renderTitledBox(m.tr.T("settings.title"), strings.Join(lines, "\n"), m.width, m.height-2, true)
}
