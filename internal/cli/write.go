package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
	"github.com/five82/sagtrack/internal/ui"
)

var errInitialUnavailable = errors.New("events exist; record a change with `sagtrack event add` instead")

// parseSets applies "corner.field=value" assignments to springs. Fields may
// be given by name (comp_fast) or abbreviation (HSC). A decimal comma is
// accepted.
func parseSets(springs sagapi.Springs, sets []string) (sagapi.Springs, error) {
	out := springs.Clone()
	if out == nil {
		out = sagapi.Springs{}
	}
	for _, corner := range sagapi.Corners {
		if _, ok := out[corner]; !ok {
			out[corner] = sagapi.SpringSetting{}
		}
	}
	for _, set := range sets {
		target, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want corner.field=value", set)
		}
		cornerName, fieldName, ok := strings.Cut(target, ".")
		if !ok {
			return nil, fmt.Errorf("--set %q: want corner.field=value", set)
		}
		corner, ok := sagapi.ParseCorner(cornerName)
		if !ok {
			return nil, fmt.Errorf("--set %q: unknown corner %q (fl, fr, rl, rr)", set, cornerName)
		}
		field, ok := parseFieldName(fieldName)
		if !ok {
			return nil, fmt.Errorf("--set %q: unknown field %q", set, fieldName)
		}
		value, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("--set %q: %w", set, err)
		}
		out[corner] = out[corner].Set(field, value.InexactFloat64())
	}
	return out, nil
}

func parseFieldName(name string) (sagapi.Field, bool) {
	if f, ok := sagapi.ParseField(name); ok {
		return f, true
	}
	return lo.Find(sagapi.Fields, func(f sagapi.Field) bool {
		return strings.EqualFold(delta.Abbr(f), strings.TrimSpace(name))
	})
}

func newEventCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Record settings",
	}

	var sets []string
	var notes string
	var fromZero bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a settings change",
		Long: "Record a settings change. Values not given with --set keep the current settings " +
			"unless --zero is passed, in which case they are 0.",
		Example: "  sagtrack event add --set fl.preload=12 --set rr.rebound=8 --notes \"rear kicks\"",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if len([]rune(notes)) > ui.NotesLimit {
				return fmt.Errorf("--notes is limited to %d characters", ui.NotesLimit)
			}
			cfg, err := rt.configStore().Load(ctx)
			if err != nil {
				return err
			}
			events := rt.eventLog()
			if _, err := events.Load(ctx); err != nil {
				return err
			}
			base, _ := events.CurrentSettings(cfg.Initial)
			if fromZero {
				base = nil
			}
			springs, err := parseSets(base, sets)
			if err != nil {
				return err
			}
			if err := events.Append(ctx, sagapi.EventPayload{Springs: springs, Notes: strings.TrimSpace(notes)}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, rt.tr.T("event.saved"))
			if entries := delta.History(events.Events()); len(entries) > 0 {
				for _, c := range entries[0].Changes {
					fmt.Fprintln(out, "  "+colorChange(c))
				}
			}
			return nil
		},
	}
	add.Flags().StringArrayVar(&sets, "set", nil, "corner.field=value, repeatable (fields: preload, comp_fast/HSC, comp_slow/LSC, rebound)")
	add.Flags().StringVar(&notes, "notes", "", "free-text notes")
	add.Flags().BoolVar(&fromZero, "zero", false, "start from zero instead of the current settings")

	var initSets []string
	var initNotes string
	initial := &cobra.Command{
		Use:   "init",
		Short: "Store the initial settings used before any event exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if len([]rune(initNotes)) > ui.NotesLimit {
				return fmt.Errorf("--notes is limited to %d characters", ui.NotesLimit)
			}
			events := rt.eventLog()
			existing, err := events.Load(ctx)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return errInitialUnavailable
			}
			springs, err := parseSets(nil, initSets)
			if err != nil {
				return err
			}
			store := rt.configStore()
			if _, err := store.Load(ctx); err != nil {
				return err
			}
			saved, err := store.Save(ctx, sagapi.Configuration{Initial: &sagapi.Snapshot{Springs: springs, Notes: strings.TrimSpace(initNotes)}})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.tr.T("initial.saved"))
			return writeSettingsTable(cmd.OutOrStdout(), rt.tr, springs, saved)
		},
	}
	initial.Flags().StringArrayVar(&initSets, "set", nil, "corner.field=value, repeatable")
	initial.Flags().StringVar(&initNotes, "notes", "", "free-text notes")

	cmd.AddCommand(add, initial)
	return cmd
}

func newResetSagCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-sag",
		Short: "Record a SAG reset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at := time.Now()
			if err := rt.eventLog().ResetSag(cmd.Context(), at); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", rt.tr.T("events.reset_sag.done"), formatTime(at))
			return nil
		},
	}
}

func newCommentCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "comment <event-ts> <text>...",
		Short:   "Add a comment to an event",
		Example: "  sagtrack comment 1718000000 felt harsh on roots",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("event timestamp %q: %w", args[0], err)
			}
			text := strings.Join(args[1:], " ")
			if len([]rune(text)) > ui.CommentLimit {
				return fmt.Errorf("comment is limited to %d characters", ui.CommentLimit)
			}
			events := rt.eventLog()
			if _, err := events.Load(cmd.Context()); err != nil {
				return err
			}
			saved, err := events.AddComment(cmd.Context(), ts, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", rt.tr.T("comment.saved"), formatTime(saved.Time()), saved.Text)
			return nil
		},
	}
}

func newUnitsCmd(rt *runtime) *cobra.Command {
	var group, preload, damping string
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Show or change the unit preferences of a group",
		Long:  "Without flags, print the unit preferences. With --group and --preload or --damping, change them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store := rt.configStore()
			cfg, err := store.Load(ctx)
			if err != nil {
				return err
			}
			preload, damping = strings.TrimSpace(preload), strings.TrimSpace(damping)
			if preload == "" && damping == "" {
				if group != "" {
					return fmt.Errorf("--group needs --preload or --damping")
				}
				return writeUnitsTable(cmd.OutOrStdout(), rt.tr, cfg)
			}
			group = strings.ToLower(strings.TrimSpace(group))
			if !lo.Contains(sagapi.Groups, group) {
				return fmt.Errorf("--group must be one of %s", strings.Join(sagapi.Groups, ", "))
			}
			saved, err := store.Save(ctx, sagapi.Configuration{}.SetGroup(group, sagapi.UnitPref{PreloadUnit: preload, DampingUnit: damping}))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.tr.T("settings.saved"))
			return writeUnitsTable(cmd.OutOrStdout(), rt.tr, saved)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "front, rl or rr")
	cmd.Flags().StringVar(&preload, "preload", "", "preload unit, e.g. mm or turns")
	cmd.Flags().StringVar(&damping, "damping", "", "damping unit, e.g. clicks or turns")

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default units (mm, clicks) for every group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := rt.configStore()
			if _, err := store.Load(cmd.Context()); err != nil {
				return err
			}
			saved, err := store.ResetUnits(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.tr.T("settings.reset.done"))
			return writeUnitsTable(cmd.OutOrStdout(), rt.tr, saved)
		},
	})
	return cmd
}

func newMarkerCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "marker <corner> <left%> <top%>",
		Short:   "Place a corner marker on the vehicle diagram",
		Long:    "Place a corner marker. Positions are percentages of the diagram and are clamped to 0-100.",
		Example: "  sagtrack marker fl 30% 20%",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			corner, ok := sagapi.ParseCorner(args[0])
			if !ok {
				return fmt.Errorf("unknown corner %q (fl, fr, rl, rr)", args[0])
			}
			left, err := state.ParsePercent(args[1])
			if err != nil {
				return fmt.Errorf("left %q: %w", args[1], err)
			}
			top, err := state.ParsePercent(args[2])
			if err != nil {
				return fmt.Errorf("top %q: %w", args[2], err)
			}
			pos := state.MarkerPoint{Left: left, Top: top}.Position()

			store := rt.configStore()
			if _, err := store.Load(cmd.Context()); err != nil {
				return err
			}
			if _, err := store.Save(cmd.Context(), sagapi.Configuration{Markers: map[sagapi.Corner]sagapi.Position{corner: pos}}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s %s\n", rt.tr.T("markers.saved"), rt.tr.T("marker."+string(corner)), pos.Left, pos.Top)
			return nil
		},
	}
}
