// Package config loads sagtrack's TOML configuration.
//
// # Resolution
//
//  1. An explicit path (the --config flag) is used when given.
//  2. Otherwise ~/.config/sagtrack/config.toml is read.
//  3. A missing file yields Default(); empty fields keep their defaults.
//
// Command-line flags and SAGTRACK_* environment variables are layered on top
// by the cli package.
//
// # Format
//
//	api_bind        = "127.0.0.1:8000"
//	log_file        = "~/.local/state/sagtrack/sagtrack.log"
//	live_interval   = "1s"
//	status_interval = "5s"
//	request_timeout = "3s"
//	travel_mm       = 160
//
//	[mock]
//	listen    = "127.0.0.1:8000"
//	data_file = "~/.local/share/sagtrack/mock.json"
//
// Durations use time.ParseDuration syntax. An unparsable or non-positive
// duration is an error rather than a silent fallback.
package config
