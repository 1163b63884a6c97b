// Package mockapi is an in-process stand-in for the sag tracking backend.
//
// It serves the same JSON endpoints the client uses:
//
//	GET  /api/status          backend status
//	GET  /api/live            one synthetic live sample
//	GET  /api/events          events, newest first
//	POST /api/event           append an event (settings or reset_sag)
//	POST /api/event/comment   append a comment to an event
//	GET  /api/config          persisted configuration
//	POST /api/config          shallow-merge into the configuration
//	GET  /metrics             Prometheus request counters
//
// Events and configuration live in memory and are written to a JSON file
// after every change. The write goes to a temporary file that is renamed
// over the target, so a crash never leaves a truncated store behind.
package mockapi
