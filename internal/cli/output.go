package cli

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/samber/lo"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

// Colors for change values and markers in console output.
var (
	increaseColor = color.New(color.FgGreen)
	decreaseColor = color.New(color.FgRed)
	resetColor    = color.New(color.FgYellow, color.Bold)
	mutedColor    = color.New(color.Faint)
	headingColor  = color.New(color.Bold)
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

// colorChange renders one corner line with signed values colored.
func colorChange(c delta.CornerChange) string {
	parts := lo.Map(c.Fields, func(f delta.FieldChange, _ int) string {
		text := f.Text
		switch {
		case f.Sign > 0:
			text = increaseColor.Sprint(text)
		case f.Sign < 0:
			text = decreaseColor.Sprint(text)
		}
		return delta.Abbr(f.Field) + " " + text
	})
	return c.Corner.Label() + ": " + strings.Join(parts, " ")
}

// changeCell is the Changes column of a history row.
func changeCell(tr *i18n.Translator, entry delta.Entry) string {
	if entry.Event.IsResetSag() {
		return resetColor.Sprint(tr.T("events.reset_sag"))
	}
	if len(entry.Changes) == 0 {
		return mutedColor.Sprint(tr.T("events.no_changes"))
	}
	return strings.Join(lo.Map(entry.Changes, func(c delta.CornerChange, _ int) string {
		return colorChange(c)
	}), "\n")
}

func writeHistoryTable(w io.Writer, tr *i18n.Translator, entries []delta.Entry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"TS", "Time", tr.T("events.title"), tr.T("event.notes"), tr.T("comment.title")})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := lo.Map(entries, func(e delta.Entry, _ int) []string {
		comments := lo.Map(e.Event.Comments, func(c sagapi.Comment, _ int) string {
			return formatTime(c.Time()) + " " + c.Text
		})
		return []string{
			strconv.FormatInt(e.Event.TS, 10),
			formatTime(e.Event.Time()),
			changeCell(tr, e),
			e.Event.Data.Notes,
			strings.Join(comments, "\n"),
		}
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeSettingsTable prints the current settings grid. A column header carries
// the unit when every group shares it; otherwise each cell does.
func writeSettingsTable(w io.Writer, tr *i18n.Translator, springs sagapi.Springs, cfg sagapi.Configuration) error {
	shared := lo.Map(sagapi.Fields, func(f sagapi.Field, _ int) string {
		return state.SharedUnit(cfg, f)
	})
	headers := []string{""}
	for i, f := range sagapi.Fields {
		title := tr.T("field."+string(f)) + " (" + delta.Abbr(f) + ")"
		if shared[i] != "" {
			title += " · " + tr.Unit(shared[i])
		}
		headers = append(headers, title)
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := lo.Map(state.SettingsRows(springs, cfg), func(row state.SettingsRow, _ int) []string {
		out := []string{tr.T("marker." + string(row.Corner))}
		for i, cell := range row.Cells {
			if shared[i] != "" {
				out = append(out, cell.Value)
				continue
			}
			out = append(out, cell.Value+" "+tr.Unit(cell.Unit))
		}
		return out
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeUnitsTable(w io.Writer, tr *i18n.Translator, cfg sagapi.Configuration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"", tr.T("settings.preload_unit"), tr.T("settings.damping_unit")})
	data := lo.Map(sagapi.Groups, func(g string, _ int) []string {
		corner := groupCorner(g)
		return []string{tr.T("group." + g), tr.Unit(cfg.PreloadUnit(corner)), tr.Unit(cfg.DampingUnit(corner))}
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// groupCorner returns a corner belonging to group.
func groupCorner(group string) sagapi.Corner {
	c, _ := lo.Find(sagapi.Corners, func(c sagapi.Corner) bool { return c.Group() == group })
	return c
}
