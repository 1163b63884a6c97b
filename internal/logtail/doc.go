// Package logtail reads the tail of sagtrack's JSON log file for the TUI.
//
// Read extracts the last N lines with a ring buffer sized to N, so memory
// stays bounded regardless of file size. Parse and Format turn zap JSON
// entries into one-line summaries; lines that are not JSON pass through
// untouched.
//
// A missing log file is not an error: the Log view simply starts empty.
package logtail
