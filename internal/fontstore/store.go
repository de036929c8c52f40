package fontstore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/fontshelf/internal/crdt"
	"github.com/five82/fontshelf/internal/font"
)

// DefaultDocument is the document name used by the application.
const DefaultDocument = "local-fonts-viewer"

const defaultCompactAfter = 256

// State is the hydration state of a Store.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Backend persists updates for named documents.
type Backend interface {
	Load(ctx context.Context, doc string) ([]crdt.Update, error)
	Append(ctx context.Context, doc string, u crdt.Update) (int, error)
	Compact(ctx context.Context, doc string, merge func([]crdt.Update) (crdt.Update, error)) error
}

// Options configure a Store.
type Options struct {
	Document string
	Backend  Backend // nil keeps the store in memory only
	Replica  string  // empty generates a random replica id
	// CompactAfter is the log length that triggers compaction. Zero uses the
	// default; a negative value disables compaction.
	CompactAfter int
	Logger       *slog.Logger
}

// Change is delivered to subscribers after each committed transaction.
type Change struct {
	Seq     uint64
	Records []font.Record
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store is the replicated font list. It is safe for concurrent use.
type Store struct {
	document     string
	backend      Backend
	logger       *slog.Logger
	compactAfter int

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	doc   *crdt.Doc
	state State
	seq   uint64
	ready chan struct{}

	nmu        sync.Mutex
	subs       []subscriber
	nextSub    int
	pending    []Change
	delivering bool

	w writer

	emu      sync.Mutex
	lastErr  error
	failures int
	skipped  string // last undecodable-row report from Pull
}

// Open creates a store for opts.Document and starts hydrating it.
func Open(opts Options) (*Store, error) {
	document := strings.TrimSpace(opts.Document)
	if document == "" {
		return nil, errors.New("fontstore: document name is required")
	}
	replica := strings.TrimSpace(opts.Replica)
	if replica == "" {
		replica = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	compactAfter := opts.CompactAfter
	if compactAfter == 0 {
		compactAfter = defaultCompactAfter
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		document:     document,
		backend:      opts.Backend,
		logger:       logger.With("component", "fontstore", "document", document),
		compactAfter: compactAfter,
		ctx:          ctx,
		cancel:       cancel,
		doc:          crdt.New(replica),
		state:        StateHydrating,
		ready:        make(chan struct{}),
	}
	s.w.init(opts.Backend != nil)

	go s.hydrate()
	go s.runWriter()
	return s, nil
}

func (s *Store) hydrate() {
	var updates []crdt.Update
	if s.backend != nil {
		loaded, err := s.backend.Load(s.ctx, s.document)
		if err != nil {
			s.recordPersistenceError("load", err)
		}
		updates = loaded
	}

	s.mu.Lock()
	changed := false
	for _, u := range updates {
		if s.doc.Apply(u) {
			changed = true
		}
	}
	s.state = StateReady
	if changed {
		s.queueChangeLocked()
	}
	n := s.doc.Len()
	s.mu.Unlock()

	if changed {
		s.drain()
	}
	close(s.ready)
	s.logger.Debug("hydrated", "updates", len(updates), "records", n)
}

// Document returns the document name.
func (s *Store) Document() string {
	return s.document
}

// Replica returns the id stamped on this store's writes.
func (s *Store) Replica() string {
	return s.doc.Replica()
}

// State returns the hydration state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready is closed once hydration has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until hydration finishes or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Records returns a copy of the list in order.
func (s *Store) Records() []font.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Records()
}

// Get returns the record with id.
func (s *Store) Get(id string) (font.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Get(id)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Len()
}

// commit runs build and commits its transaction as one unit.
func (s *Store) commit(build func(doc *crdt.Doc, txn *crdt.Txn)) bool {
	s.mu.Lock()
	txn := s.doc.Begin()
	build(s.doc, txn)
	u, ok := txn.Commit()
	if ok {
		s.w.enqueue(u)
		s.queueChangeLocked()
	}
	s.mu.Unlock()

	if ok {
		s.w.signal()
		s.drain()
	}
	return ok
}

// ReplaceAll populates an empty list with records in order. It does nothing
// when the list already holds records, so repeated first-population attempts
// cannot duplicate entries. Records sharing an ID collapse onto the first
// occurrence's position with the last occurrence's fields.
func (s *Store) ReplaceAll(records []font.Record) (bool, error) {
	if s.State() != StateReady {
		return false, ErrNotReady
	}
	ok := s.commit(func(doc *crdt.Doc, txn *crdt.Txn) {
		if doc.Len() > 0 {
			return
		}
		for _, r := range dedupe(records) {
			txn.Insert(r)
		}
	})
	return ok, nil
}

// Reconcile makes the list match records without losing user attributes:
// vanished faces are deleted, new faces appended and changed names rewritten
// in place. Favorites and ranks of surviving faces are kept.
func (s *Store) Reconcile(records []font.Record) bool {
	incoming := dedupe(records)
	return s.commit(func(doc *crdt.Doc, txn *crdt.Txn) {
		keep := make(map[string]struct{}, len(incoming))
		for _, r := range incoming {
			keep[r.ID] = struct{}{}
		}
		for _, cur := range doc.Records() {
			if _, ok := keep[cur.ID]; !ok {
				txn.Delete(cur.ID)
			}
		}
		for _, r := range incoming {
			cur, ok := doc.Get(r.ID)
			if !ok {
				txn.Insert(r)
				continue
			}
			if !cur.SameMeta(r) {
				txn.SetMeta(r)
			}
		}
	})
}

// ToggleFavorite flips the favorite flag of id. Unknown ids are ignored.
// Becoming a favorite does not assign a rank; the face sorts after ranked
// favorites until PersistOrder places it.
func (s *Store) ToggleFavorite(id string) bool {
	return s.commit(func(doc *crdt.Doc, txn *crdt.Txn) {
		cur, ok := doc.Get(id)
		if !ok {
			return
		}
		txn.SetFavorite(id, !cur.Favorite)
		// Either direction leaves the face unranked.
		if cur.FavoriteOrder != nil {
			txn.SetOrder(id, nil)
		}
	})
}

// PersistOrder ranks favorites by their index in orderedIDs and returns how
// many ranks changed. Non-favorites, unknown ids and repeated ids are skipped;
// favorites missing from orderedIDs keep their rank.
func (s *Store) PersistOrder(orderedIDs []string) int {
	changed := 0
	s.commit(func(doc *crdt.Doc, txn *crdt.Txn) {
		seen := make(map[string]struct{}, len(orderedIDs))
		for rank, id := range orderedIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			cur, ok := doc.Get(id)
			if !ok || !cur.Favorite {
				continue
			}
			if cur.FavoriteOrder != nil && *cur.FavoriteOrder == rank {
				continue
			}
			txn.SetOrder(id, font.Order(rank))
			changed++
		}
	})
	return changed
}

// Clear deletes every record. Clearing an empty list commits nothing.
func (s *Store) Clear() bool {
	return s.commit(func(doc *crdt.Doc, txn *crdt.Txn) {
		for _, r := range doc.Records() {
			txn.Delete(r.ID)
		}
	})
}

// Merge applies an update produced by another replica and persists it.
func (s *Store) Merge(u crdt.Update) (bool, error) {
	if err := u.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	changed := s.doc.Apply(u)
	if changed {
		s.w.enqueue(u)
		s.queueChangeLocked()
	}
	s.mu.Unlock()

	if changed {
		s.w.signal()
		s.drain()
	}
	return changed, nil
}

// Pull merges updates other processes appended to the backend.
func (s *Store) Pull(ctx context.Context) (bool, error) {
	if s.backend == nil {
		return false, nil
	}
	if err := s.WaitReady(ctx); err != nil {
		return false, err
	}
	updates, err := s.backend.Load(ctx, s.document)
	switch {
	case err == nil:
	case errors.Is(err, crdt.ErrMalformed):
		// Rows that never decode are skipped on every pull; report them once.
		s.noteSkipped(err)
	default:
		s.recordPersistenceError("pull", err)
		if len(updates) == 0 {
			return false, &PersistenceError{Op: "pull", Document: s.document, Err: err}
		}
	}
	changed := s.mergeStored(updates)
	if changed {
		s.drain()
	}
	return changed, nil
}

func (s *Store) mergeStored(updates []crdt.Update) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, u := range updates {
		if s.doc.Apply(u) {
			changed = true
		}
	}
	if changed {
		s.queueChangeLocked()
	}
	return changed
}

// Flush waits until every transaction committed so far has been handed to the
// backend.
func (s *Store) Flush(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	done, ok := s.w.barrier()
	if !ok {
		return nil
	}
	s.w.signal()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending writes and stops the writer. The in-memory list stays
// readable; later mutations are no longer persisted.
func (s *Store) Close() error {
	s.w.closeOnce.Do(func() {
		s.w.close()
		<-s.w.done
		s.cancel()
	})
	return nil
}

// LastPersistenceError returns the most recent backend failure, if any.
func (s *Store) LastPersistenceError() error {
	s.emu.Lock()
	defer s.emu.Unlock()
	return s.lastErr
}

// PersistenceFailures counts backend failures since Open.
func (s *Store) PersistenceFailures() int {
	s.emu.Lock()
	defer s.emu.Unlock()
	return s.failures
}

func (s *Store) recordPersistenceError(op string, err error) {
	perr := &PersistenceError{Op: op, Document: s.document, Err: err}
	s.emu.Lock()
	s.lastErr = perr
	s.failures++
	s.emu.Unlock()
	s.logger.Warn("persistence degraded", "op", op, "error", err)
}

func (s *Store) noteSkipped(err error) {
	msg := err.Error()
	s.emu.Lock()
	seen := msg == s.skipped
	s.skipped = msg
	s.emu.Unlock()
	if seen {
		s.logger.Debug("skipping undecodable updates", "error", err)
		return
	}
	s.logger.Warn("skipping undecodable updates", "error", err)
}

func dedupe(records []font.Record) []font.Record {
	index := make(map[string]int, len(records))
	out := make([]font.Record, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			continue
		}
		if i, ok := index[r.ID]; ok {
			out[i] = r.Clone()
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r.Clone())
	}
	return out
}
