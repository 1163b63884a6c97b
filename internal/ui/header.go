package ui

import (
	"strings"

	"github.com/five82/sagtrack/internal/state"
)

// renderHeader renders the status bar: logo, backend status, session and the
// live badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasStatus && m.snapshot.StatusError == nil {
		return styles.Header.Width(m.width).Render(
			bg.Render("sagtrack", styles.Logo) + bg.Spaces(2) +
				bg.Render(m.tr.T("header.connecting"), styles.WarningText.Bold(true)),
		)
	}

	return styles.Header.Width(m.width).Render(m.buildStatusContent(styles, bg))
}

// buildStatusContent builds the status bar content string.
func (m Model) buildStatusContent(styles Styles, bg BgStyle) string {
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)
	status := state.ProjectStatus(m.snapshot)
	live := m.liveView()

	parts := []string{bg.Render("sagtrack", styles.Logo)}

	switch {
	case status.Offline:
		parts = append(parts, bg.Render("● "+m.tr.T("status.offline"), styles.Indicator("offline").Bold(true)))
	case live.Badge != "":
		parts = append(parts, bg.Render("● "+live.Badge, styles.Indicator("live")))
	default:
		parts = append(parts, bg.Render("● "+m.tr.T("status.idle"), styles.Indicator("idle")))
	}

	parts = append(parts, bg.Render(truncate(status.Headline, 40), styles.Text))

	if line := m.sessionLine(status); line != "" && !compact {
		parts = append(parts, bg.Render(truncate(line, 36), styles.MutedText))
	}

	parts = append(parts,
		bg.Render(m.tr.T("home.sag")+":", styles.MutedText)+bg.Space()+
			bg.Render(live.Sag, styles.AccentText.Bold(true)),
	)

	if !compact && !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return strings.Join(parts, sep)
}

// sessionLine renders the session part of the status panel.
func (m Model) sessionLine(status state.StatusView) string {
	switch status.Session {
	case state.SessionTestEnv:
		return m.tr.T("session.testenv")
	case state.SessionFirmware:
		return m.tr.Tf("session.firmware", status.SessionValue)
	case state.SessionID:
		return m.tr.Tf("session.active", status.SessionValue)
	default:
		return ""
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewEvents:
		commands = []cmd{
			{"j/k", m.tr.T("cmd.navigate")},
			{"a", m.tr.T("cmd.add")},
			{"c", m.tr.T("cmd.comment")},
			{"r", m.tr.T("cmd.reset_sag")},
		}
	case ViewSettings:
		commands = []cmd{
			{"j/k", m.tr.T("cmd.navigate")},
			{"space", m.tr.T("cmd.change")},
			{"enter", m.tr.T("cmd.save")},
			{"R", m.tr.T("cmd.defaults")},
		}
	case ViewLogs:
		followLabel := m.tr.T("cmd.pause")
		if !m.logFollow {
			followLabel = m.tr.T("cmd.follow")
		}
		commands = []cmd{
			{"space", followLabel},
			{"j/k", m.tr.T("cmd.scroll")},
		}
	default:
		commands = []cmd{
			{"a", m.tr.T("cmd.add")},
			{"i", m.tr.T("cmd.initial")},
			{"m", m.tr.T("cmd.markers")},
			{"r", m.tr.T("cmd.reset_sag")},
		}
	}
	commands = append(commands,
		cmd{"1-4", m.viewName()},
		cmd{"?", m.tr.T("cmd.more")},
	)

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+3)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText),
		bg.Render("L", styles.AccentText)+colon+bg.Render(strings.ToUpper(m.tr.Lang()), styles.FaintText))

	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		segments = append(segments, bg.Render(truncate(m.flash, 48), style))
	}

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

func (m Model) viewName() string {
	switch m.currentView {
	case ViewEvents:
		return m.tr.T("nav.events")
	case ViewSettings:
		return m.tr.T("nav.settings")
	case ViewLogs:
		return m.tr.T("nav.logs")
	default:
		return m.tr.T("nav.home")
	}
}
