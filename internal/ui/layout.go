package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the home view stacks
	// its panels vertically.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the width from which the events view shows the
	// comment thread beside the history.
	LayoutWideWidth = 140
)

// Log view limits.
const (
	// LogTailLines is how many log lines the log view reads.
	LogTailLines = 500
)

// Event form limits.
const (
	// NotesLimit is the maximum length of event notes.
	NotesLimit = 160

	// CommentLimit is the maximum length of a comment typed in the UI.
	CommentLimit = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// WriteTimeout bounds a write-then-reload command.
	WriteTimeout = 10 * time.Second

	// FlashDuration is how long a transient notice stays in the command bar.
	FlashDuration = 4 * time.Second
)

// Marker diagram geometry.
const (
	markerDiagramWidth  = 42
	markerDiagramHeight = 13
)
