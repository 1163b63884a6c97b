package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// helpSections lists the shortcuts shown in the help overlay. Descriptions
// are translation keys.
var helpSections = []helpSection{
	{
		title: "help.navigation",
		items: []helpItem{
			{"tab", "help.cycle_views"},
			{"1/2/3/4", "help.views"},
			{"esc", "help.back"},
			{"j/k", "help.move"},
			{"g/G", "help.top_bottom"},
			{"ctrl+d/u", "help.half_page"},
		},
	},
	{
		title: "help.events",
		items: []helpItem{
			{"a", "help.add_event"},
			{"i", "help.set_initial"},
			{"c", "help.comment"},
			{"r", "help.reset_sag"},
			{"m", "help.markers"},
			{"ctrl+r", "help.reload"},
		},
	},
	{
		title: "help.settings",
		items: []helpItem{
			{"space/h/l", "help.change_unit"},
			{"enter", "help.save"},
			{"R", "help.reset_units"},
		},
	},
	{
		title: "help.general",
		items: []helpItem{
			{"T", "help.theme"},
			{"L", "help.language"},
			{"?", "help.help"},
			{"q/ctrl+c", "help.quit"},
		},
	},
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	var b strings.Builder
	for i, section := range helpSections {
		b.WriteString(styles.AccentText.Bold(true).Render(m.tr.T(section.title)))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(m.tr.T(item.desc)))
			b.WriteString("\n")
		}
		if i < len(helpSections)-1 {
			b.WriteString("\n")
		}
	}

	return renderModal(m.theme, m.tr.T("help.title"), b.String(), 48, m.width, m.height)
}
