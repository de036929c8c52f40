// Package fontstore owns the replicated font list and its durability.
//
// # Overview
//
// The Store mirrors the host's font enumeration into a crdt.Doc and writes every
// committed transaction to a Backend (the SQLite update log in production). The
// list survives restarts, so the expensive enumeration only runs on first use or
// on an explicit refresh.
//
// # Lifecycle
//
//	Open()  ──> hydrating ──(backend.Load finished, even on error)──> ready
//
// Hydration runs in the background. Mutations made before ready are applied in
// memory and merged with whatever hydration loads; ReplaceAll refuses to run
// before ready because emptiness is not known yet. Callers that need the
// persisted state wait on Ready() or WaitReady(ctx).
//
// # Transactions
//
// Every mutating method runs as one crdt transaction under the store mutex:
//
//	ReplaceAll    first population, no-op when the list is non-empty
//	Reconcile     forced refresh, deletes vanished faces and inserts new ones
//	ToggleFavorite flip favorite; clearing a favorite also clears its rank
//	PersistOrder  write dense ranks for favorites that moved
//	Clear         delete everything
//
// Transactions never interleave and observers never see a half-applied one.
//
// # Notifications
//
// Subscribe registers a callback that receives a Change once per committed
// transaction. Callbacks run after the mutex is released. A callback may call
// back into the store; the resulting change is queued and delivered after the
// current round of callbacks returns, never nested inside it.
//
// # Durability
//
// Writes go through a single writer goroutine in commit order. Backend failures
// become *PersistenceError values that are logged and recorded but never undo
// or block the in-memory state, which stays the source of truth for the session.
// Once the log for a document grows past CompactAfter rows the writer folds it
// into a snapshot, merging in any rows other processes appended meanwhile.
package fontstore
