// Package state holds the client-side caches shared by the pollers, the UI
// and the CLI.
//
// Three independent owners exist, each guarded by its own mutex:
//
//   - Store: the latest status and live sample written by the pollers.
//   - EventLog: the newest-first event history, replaced wholesale on load.
//   - ConfigStore: the backend configuration, replaced by the server response
//     after every save.
//
// No type writes another's cache. Writes go to the server first; the cache is
// only updated from what the server returns (EventLog.Append reloads the whole
// log before returning).
//
// Status and live failures are treated differently. A failed status poll keeps
// the previous status and marks the snapshot offline. A failed live poll
// clears the sample so the UI falls back to placeholders.
package state
