// Package ui provides the Bubble Tea terminal interface for fontshelf.
//
// # Architecture Overview
//
// Model is the root tea.Model. It renders projections built by the views
// package from the font store's records and never holds authoritative data:
// favorites and order changes go back through the store, lifecycle actions
// (start, reload, clear) through the sync controller.
//
// # Package Structure
//
//   - app.go: Model, Update loop, key dispatch and Run
//   - actions.go: Commands wrapping store and controller calls, action results
//   - fonts.go: Font list and detail panes, titled box renderer
//   - header.go: Status header and command bar
//   - logs.go: Log pane over logtail with level filtering
//   - help.go, modal.go: Help overlay and the confirm dialog
//   - theme.go, style_helpers.go: Lipgloss themes and background helpers
//
// # Views
//
//   - Fonts: All tab (grouped by family, first-seen family order) or
//     Favorites tab (ranked flat list, reorderable with J/K); s steps
//     through the other styles of the selected family
//   - Log: Tail of the application log file
//
// # Event Flow
//
//  1. New subscribes to the store; the callback only nudges a channel
//  2. Init starts the controller, the refresh tick and the change listener
//  3. changeMsg rebuilds projections from store.Records()
//  4. Store and controller calls run as tea.Cmds and report back as actionMsg
//  5. tickMsg refreshes the lifecycle snapshot and, when following, the log
//
// Store mutations never run inside Update: subscriber delivery is synchronous
// on the mutating goroutine.
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context:    ctx,
//		Store:      store,
//		Controller: controller,
//		LogFile:    cfg.LogFile,
//		Prefs:      userPrefs,
//		PrefsPath:  cfg.PrefsPath,
//	})
package ui
