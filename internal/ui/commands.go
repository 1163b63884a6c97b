package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sagtrack/internal/logtail"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type eventsLoadedMsg struct{ err error }

type configLoadedMsg struct{ err error }

// writeDoneMsg reports a finished write. notice is a translation key shown
// on success; failure shows the error. A state.ErrReloadFailed error means
// the write itself succeeded.
type writeDoneMsg struct {
	notice string
	err    error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadEventsCmd(ctx context.Context, events *state.EventLog) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
		_, err := events.Load(ctx)
		return eventsLoadedMsg{err: err}
	}
}

func loadConfigCmd(ctx context.Context, cfg *state.ConfigStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
		_, err := cfg.Load(ctx)
		return configLoadedMsg{err: err}
	}
}

// writeCmd runs fn with a bounded context. fn performs the write and the
// reload it needs, so the reload always observes the write.
func writeCmd(ctx context.Context, notice string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		defer cancel()
		return writeDoneMsg{notice: notice, err: fn(ctx)}
	}
}

func appendEventCmd(ctx context.Context, events *state.EventLog, springs sagapi.Springs, notes string) tea.Cmd {
	return writeCmd(ctx, "event.saved", func(ctx context.Context) error {
		return events.Append(ctx, sagapi.EventPayload{Springs: springs, Notes: notes})
	})
}

// saveInitialCmd stores the initial snapshot without creating an event.
func saveInitialCmd(ctx context.Context, cfg *state.ConfigStore, springs sagapi.Springs, notes string) tea.Cmd {
	return writeCmd(ctx, "initial.saved", func(ctx context.Context) error {
		_, err := cfg.Save(ctx, sagapi.Configuration{Initial: &sagapi.Snapshot{Springs: springs, Notes: notes}})
		return err
	})
}

func resetSagCmd(ctx context.Context, events *state.EventLog) tea.Cmd {
	return writeCmd(ctx, "events.reset_sag.done", func(ctx context.Context) error {
		return events.ResetSag(ctx, time.Now())
	})
}

func postCommentCmd(ctx context.Context, events *state.EventLog, ts int64, text string) tea.Cmd {
	return writeCmd(ctx, "comment.saved", func(ctx context.Context) error {
		_, err := events.AddComment(ctx, ts, text)
		return err
	})
}

func saveMarkerCmd(ctx context.Context, cfg *state.ConfigStore, corner sagapi.Corner, pos sagapi.Position) tea.Cmd {
	return writeCmd(ctx, "markers.saved", func(ctx context.Context) error {
		_, err := cfg.Save(ctx, sagapi.Configuration{Markers: map[sagapi.Corner]sagapi.Position{corner: pos}})
		return err
	})
}

// saveUnitsCmd saves unit preferences and reloads the events so the history
// renders with the new units.
func saveUnitsCmd(ctx context.Context, cfg *state.ConfigStore, events *state.EventLog, units sagapi.Configuration) tea.Cmd {
	return writeCmd(ctx, "settings.saved", func(ctx context.Context) error {
		if _, err := cfg.Save(ctx, units); err != nil {
			return err
		}
		return events.Reload(ctx)
	})
}

func resetUnitsCmd(ctx context.Context, cfg *state.ConfigStore, events *state.EventLog) tea.Cmd {
	return writeCmd(ctx, "settings.reset.done", func(ctx context.Context) error {
		if _, err := cfg.ResetUnits(ctx); err != nil {
			return err
		}
		return events.Reload(ctx)
	})
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}
