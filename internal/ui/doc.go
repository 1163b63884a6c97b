// Package ui implements the sagtrack terminal interface with Bubble Tea.
//
// The Model reads three caches owned by the state package: the telemetry
// Store filled by the pollers, the EventLog and the ConfigStore. It never
// mutates them directly. Writes run as tea.Cmds that perform the write and
// the reload in one step and report back with writeDoneMsg.
//
// Views:
//
//   - Home: status, live sag, marker readings, vehicle diagram and the
//     current settings table
//   - Events: history with per-corner change lines, comments, SAG reset
//   - Settings: unit preferences per group
//   - Log: tail of the sagtrack log file
//
// Modals (event form, marker editor, comment form, confirmations) implement
// the Modal interface and take every key while open.
package ui
