package ui

import "time"

// Widths at which the header abbreviates and the detail pane widens.
const (
	LayoutCompactWidth   = 100
	LayoutExtraWideWidth = 160
)

const (
	// LogBufferLimit caps how many trailing log lines one refresh reads.
	LogBufferLimit = 2000
	// LogRefreshDebounce spaces out log reads while following.
	LogRefreshDebounce = 400 * time.Millisecond
	// DefaultUIInterval is how often the header snapshot refreshes.
	DefaultUIInterval = time.Second
	// StatusFlashDuration is how long an action result stays in the command bar.
	StatusFlashDuration = 4 * time.Second
)
