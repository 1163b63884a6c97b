// Package sagapi provides an HTTP client for the sag tracking backend.
//
// # Endpoints
//
//   - GET  /api/status         backend status, session and firmware
//   - GET  /api/live           recent live samples; only the first is used
//   - GET  /api/events         event log, newest first
//   - POST /api/event          record a settings change or a sag reset
//   - POST /api/event/comment  append a comment to an event
//   - GET  /api/config         unit preferences, markers, initial snapshot
//   - POST /api/config         replace the configuration (server merges shallowly)
//
// # Errors
//
// Transport failures are wrapped as "execute request: ...", undecodable bodies
// as "decode response: ...". Responses with a status of 400 or above return a
// *StatusError so callers can inspect the code with errors.As.
//
// # Units
//
// Spring values are raw numbers. Their units are not stored with events; they
// are resolved at render time from the Configuration, where fl and fr share the
// "front" group and rl and rr each have their own.
package sagapi
