// Package state provides thread-safe UI state for the fontshelf application.
//
// # Overview
//
// This package holds the ephemeral, non-replicated part of the application:
// whether a font load is in flight, the error to show, and the health of the
// background storage pull. The font list itself lives in the replicated store;
// nothing here is persisted.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producers:                          Consumer (UI):
//	┌─────────────────────┐            ┌────────────────┐
//	│ sync controller     │            │                │
//	│   Begin/Populated/  │            │                │
//	│   Fail/Reset        │───────────→│ Snapshot()     │
//	│ pull loop           │  (mutex)   │      ↓         │
//	│   RecordSync        │            │  render UI     │
//	└─────────────────────┘            └────────────────┘
//
// # Lifecycle Fields
//
// Loading and Error mirror what the screen shows. Phase and Kind carry the
// controller's position:
//
//	idle ──Begin──> loading ──Populated──> populated
//	                   │
//	                   └────Fail(kind)───> error (unsupported | denied | enumeration)
//
// Every Begin clears the previous error. Reset returns to idle after the cache
// is cleared and records the new generation.
//
// # Pull Health
//
// RecordSync tracks consecutive storage pull failures. Two or more in a row
// mark the snapshot offline, which the UI shows as a degraded-storage badge.
// Reset leaves these fields alone because storage health is independent of the
// font lifecycle.
//
// # Defensive Copying
//
// Snapshot returns a value copy; the stored error is wrapped so callers never
// hold the producer's instance.
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	store := &state.Store{}  // idle, ready to use
package state
