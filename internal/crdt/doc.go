// Package crdt implements the replicated font list.
//
// # Model
//
// The list is a set of elements keyed by face ID. Every mutable aspect of an
// element is a last-writer-wins register stamped with a Lamport clock and the
// replica that wrote it:
//
//	present   insert sets true, delete sets false
//	position  stamp of the latest insert (list order is append order)
//	meta      display name, family, style
//	favorite  bool
//	order     optional favorite rank
//
// Registers only move forward: an op is applied when its stamp is after the
// register's stamp. Applying the same update twice, or two updates in either
// order, yields the same document, so two processes writing the same persisted
// document converge without coordination.
//
// # Transactions
//
// A Txn collects ops and applies them in one step on Commit, returning the
// Update to persist or ship to other replicas. Each op gets its own clock tick,
// so ops inside one transaction never tie.
//
// Doc is not safe for concurrent use; the owning store serializes access.
package crdt
