// Package app wires configuration, the API client, the state caches, the
// pollers and the UI into the sagtrack TUI.
//
// # Startup
//
//  1. Load prefs (theme, language) from ~/.config/sagtrack/prefs.toml
//  2. Create the sagapi client for the configured api_bind
//  3. Create the telemetry Store, EventLog and ConfigStore
//  4. Start the live and status pollers
//  5. Run the Bubble Tea UI until the user quits
//
// # Polling
//
// Each poller is a single goroutine with its own ticker. A fetch finishes,
// bounded by the request timeout, before the next tick is taken, so results
// of one poller land in order. Ticks missed during a slow fetch are dropped.
//
//   - live (default 1s): a failure clears the sample, the UI shows "--%"
//   - status (default 5s): a failure keeps the last status and marks the
//     backend offline
//
// Poll failures are logged and never end the program.
package app
