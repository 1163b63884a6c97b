package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/sagtrack/internal/delta"
	"github.com/five82/sagtrack/internal/logging"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

func (rt *runtime) eventLog() *state.EventLog {
	return state.NewEventLog(rt.client, rt.logger.Named(logging.Events))
}

func (rt *runtime) configStore() *state.ConfigStore {
	return state.NewConfigStore(rt.client, rt.logger.Named(logging.Config))
}

func newHistoryCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded events with their changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := rt.eventLog().Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, rt.tr.T("events.empty"))
				return nil
			}
			// Deltas need the full log; the limit only trims the output.
			entries := delta.History(events)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			return writeHistoryTable(out, rt.tr, entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n events (0 shows all)")
	return cmd
}

func newCurrentCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current settings with units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := rt.configStore().Load(ctx)
			if err != nil {
				return err
			}
			events := rt.eventLog()
			if _, err := events.Load(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			springs, source := events.CurrentSettings(cfg.Initial)
			switch source {
			case state.SourceNone:
				fmt.Fprintln(out, rt.tr.T("events.empty"))
				fmt.Fprintln(out, rt.tr.T("cli.current.hint"))
				return nil
			case state.SourceEvent:
				fmt.Fprintln(out, headingColor.Sprint(rt.tr.Tf("home.source.event", formatTime(events.Events()[0].Time()))))
			case state.SourceInitial:
				fmt.Fprintln(out, headingColor.Sprint(rt.tr.T("home.source.initial")))
			}
			return writeSettingsTable(out, rt.tr, springs, cfg)
		},
	}
}

func newStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend status and the latest live sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var store state.Store
			store.UpdateStatus(rt.client.FetchStatus(ctx))
			store.UpdateLive(rt.client.FetchLive(ctx))
			snap := store.Snapshot()

			out := cmd.OutOrStdout()
			status := state.ProjectStatus(snap)
			if status.Offline {
				fmt.Fprintf(out, "%s: %s (%v)\n", rt.tr.T("home.status"), decreaseColor.Sprint(rt.tr.T("status.offline")), snap.StatusError)
			} else {
				fmt.Fprintf(out, "%s: %s\n", rt.tr.T("home.status"), status.Headline)
			}
			if line := sessionLine(rt, status); line != "" {
				fmt.Fprintln(out, line)
			}

			live := state.ProjectLive(snap.Live, rt.cfg.TravelMM)
			if live.Badge == "" {
				fmt.Fprintln(out, mutedColor.Sprint(rt.tr.T("home.no_live")))
				return nil
			}
			fmt.Fprintln(out, live.Badge)
			fmt.Fprintf(out, "%s: %s\n", rt.tr.T("home.sag"), live.Sag)
			for _, c := range sagapi.Corners {
				fmt.Fprintf(out, "  %-12s %s\n", rt.tr.T("marker."+string(c)), live.Marker(c))
			}
			return nil
		},
	}
}

func sessionLine(rt *runtime, status state.StatusView) string {
	switch status.Session {
	case state.SessionTestEnv:
		return rt.tr.T("session.testenv")
	case state.SessionFirmware:
		return rt.tr.Tf("session.firmware", status.SessionValue)
	case state.SessionID:
		return rt.tr.Tf("session.active", status.SessionValue)
	}
	return ""
}
