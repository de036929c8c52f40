// Package app provides the orchestration layer for fontshelf.
//
// # Overview
//
// This package wires together configuration, logging, the SQLite update log,
// the replicated font store, the filesystem font host and the sync controller.
// It is the composition root: the TUI and every CLI subcommand go through Open.
//
// # Architecture
//
//  1. Load config from ~/.config/fontshelf/config.toml plus FONTSHELF_* overrides
//  2. Point slog at the log file
//  3. Open the SQLite database and the font store (hydration starts here)
//  4. Build the filesystem host over the configured or default font dirs
//  5. Build the controller and its UI state
//
// Run adds a background puller and the TUI on top.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> Open()               Build components
//	       ├─────> prefs.Load()         Theme and starting tab
//	       ├─────> StartPuller()        Merge other processes' writes
//	       └─────> ui.Run()             Start TUI (blocks)
//
//	Background Puller Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPuller() goroutine                 │
//	│  ├─> store.Pull()                       │
//	│  └─> state.RecordSync()                 │
//	│      └─> UI reads state.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Pull Behavior
//
// The puller waits the configured pull_interval (default 2 seconds) between
// pulls. Each failure doubles the wait, capped at 30 seconds; one success
// resets it. Two consecutive failures mark the snapshot offline, which the
// header shows.
//
// # Error Handling
//
// Fatal errors (returned from Open or Run):
//   - Invalid configuration
//   - Log file or database that cannot be opened
//
// Recoverable errors (logged, the app keeps running):
//   - Pull failures
//   - Backend append or compaction failures inside the store
//   - Unreadable preferences
package app
