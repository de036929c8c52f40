package fontstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/fontshelf/internal/crdt"
	"github.com/five82/fontshelf/internal/font"
	"github.com/five82/fontshelf/internal/persist"
)

type memBackend struct {
	mu          sync.Mutex
	logs        map[string][]crdt.Update
	gate        chan struct{}
	appendErr   error
	loadErr     error // returned alongside the stored updates
	compactions int
}

func newMemBackend() *memBackend {
	return &memBackend{logs: make(map[string][]crdt.Update)}
}

func (b *memBackend) Load(ctx context.Context, doc string) ([]crdt.Update, error) {
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]crdt.Update(nil), b.logs[doc]...), b.loadErr
}

func (b *memBackend) setLoadErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadErr = err
}

func (b *memBackend) Append(_ context.Context, doc string, u crdt.Update) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.appendErr != nil {
		return 0, b.appendErr
	}
	b.logs[doc] = append(b.logs[doc], u)
	return len(b.logs[doc]), nil
}

func (b *memBackend) Compact(_ context.Context, doc string, merge func([]crdt.Update) (crdt.Update, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	snapshot, err := merge(append([]crdt.Update(nil), b.logs[doc]...))
	if err != nil {
		return err
	}
	b.logs[doc] = nil
	if len(snapshot.Ops) > 0 {
		b.logs[doc] = []crdt.Update{snapshot}
	}
	b.compactions++
	return nil
}

func (b *memBackend) rows(doc string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.logs[doc])
}

func openReady(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Document == "" {
		opts.Document = DefaultDocument
	}
	s, err := Open(opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func sample() []font.Record {
	return []font.Record{
		{ID: "Foo-Regular", DisplayName: "Foo Regular", Family: "Foo", Style: "Regular"},
		{ID: "Foo-Bold", DisplayName: "Foo Bold", Family: "Foo", Style: "Bold"},
		{ID: "Bar-Regular", DisplayName: "Bar Regular", Family: "Bar", Style: "Regular"},
	}
}

func ids(records []font.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestOpen_RequiresDocument(t *testing.T) {
	if _, err := Open(Options{Document: "  "}); err == nil {
		t.Fatal("expected error for blank document name")
	}
}

func TestReplaceAll_BeforeReadyReturnsErrNotReady(t *testing.T) {
	backend := newMemBackend()
	backend.gate = make(chan struct{})
	s, err := Open(Options{Document: DefaultDocument, Backend: backend})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got := s.State(); got != StateHydrating {
		t.Fatalf("State = %v, want hydrating", got)
	}
	if _, err := s.ReplaceAll(sample()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("ReplaceAll before ready = %v, want ErrNotReady", err)
	}

	close(backend.gate)
	if err := s.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if got := s.State(); got != StateReady {
		t.Fatalf("State = %v, want ready", got)
	}
	ok, err := s.ReplaceAll(sample())
	if err != nil || !ok {
		t.Fatalf("ReplaceAll after ready = %v, %v, want true, nil", ok, err)
	}
}

func TestReplaceAll_IsIdempotent(t *testing.T) {
	s := openReady(t, Options{})

	if ok, _ := s.ReplaceAll(sample()); !ok {
		t.Fatal("first ReplaceAll did not commit")
	}
	first := s.Records()

	more := append(sample(), font.Record{ID: "Baz-Regular", Family: "Baz", Style: "Regular"})
	if ok, _ := s.ReplaceAll(more); ok {
		t.Fatal("second ReplaceAll committed on a populated list")
	}
	if got := s.Records(); !reflect.DeepEqual(got, first) {
		t.Fatalf("records changed after second ReplaceAll: %v", ids(got))
	}
}

func TestReplaceAll_CollapsesDuplicateIDs(t *testing.T) {
	s := openReady(t, Options{})

	_, _ = s.ReplaceAll([]font.Record{
		{ID: "A", DisplayName: "old", Family: "Foo"},
		{ID: "B", Family: "Foo"},
		{ID: "A", DisplayName: "new", Family: "Foo"},
		{ID: ""},
	})

	got := s.Records()
	if want := []string{"A", "B"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if got[0].DisplayName != "new" {
		t.Fatalf("A display name = %q, want last occurrence", got[0].DisplayName)
	}
}

func TestToggleFavorite_RoundTrip(t *testing.T) {
	s := openReady(t, Options{})
	_, _ = s.ReplaceAll(sample())

	if s.ToggleFavorite("Missing") {
		t.Fatal("toggle of unknown id committed")
	}

	if !s.ToggleFavorite("Foo-Bold") {
		t.Fatal("toggle did not commit")
	}
	r, _ := s.Get("Foo-Bold")
	if !r.Favorite || r.FavoriteOrder != nil {
		t.Fatalf("after first toggle = %+v, want unranked favorite", r)
	}

	s.PersistOrder([]string{"Foo-Bold"})
	if r, _ := s.Get("Foo-Bold"); r.FavoriteOrder == nil || *r.FavoriteOrder != 0 {
		t.Fatalf("rank = %v, want 0", r.FavoriteOrder)
	}

	s.ToggleFavorite("Foo-Bold")
	r, _ = s.Get("Foo-Bold")
	if r.Favorite || r.FavoriteOrder != nil {
		t.Fatalf("after second toggle = %+v, want plain record", r)
	}

	s.ToggleFavorite("Foo-Bold")
	if r, _ := s.Get("Foo-Bold"); r.FavoriteOrder != nil {
		t.Fatalf("stale rank resurfaced: %v", *r.FavoriteOrder)
	}
}

func TestPersistOrder_RanksFavorites(t *testing.T) {
	s := openReady(t, Options{})
	_, _ = s.ReplaceAll([]font.Record{
		{ID: "A", Family: "Foo"},
		{ID: "B", Family: "Foo"},
		{ID: "C", Family: "Foo"},
		{ID: "D", Family: "Foo"},
	})
	for _, id := range []string{"A", "B", "C"} {
		s.ToggleFavorite(id)
	}

	if n := s.PersistOrder([]string{"C", "A", "B", "D", "Missing", "C"}); n != 3 {
		t.Fatalf("PersistOrder changed %d ranks, want 3", n)
	}
	wantRanks := map[string]int{"C": 0, "A": 1, "B": 2}
	for id, want := range wantRanks {
		r, _ := s.Get(id)
		if rank, ok := r.Rank(); !ok || rank != want {
			t.Fatalf("%s rank = %d, %v, want %d", id, rank, ok, want)
		}
	}
	if r, _ := s.Get("D"); r.FavoriteOrder != nil {
		t.Fatal("non-favorite D received a rank")
	}

	var changes int
	unsubscribe := s.Subscribe(func(Change) { changes++ })
	defer unsubscribe()
	if n := s.PersistOrder([]string{"C", "A", "B"}); n != 0 || changes != 0 {
		t.Fatalf("repeat PersistOrder = %d ranks, %d changes, want 0, 0", n, changes)
	}

	if n := s.PersistOrder([]string{"A", "B", "C"}); n != 3 {
		t.Fatalf("reorder changed %d ranks, want 3", n)
	}
	for i, id := range []string{"A", "B", "C"} {
		r, _ := s.Get(id)
		if rank, _ := r.Rank(); rank != i {
			t.Fatalf("%s rank = %d, want %d", id, rank, i)
		}
	}
}

func TestClear_EmptiesListOnce(t *testing.T) {
	s := openReady(t, Options{})
	_, _ = s.ReplaceAll(sample())

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })
	defer unsubscribe()

	if !s.Clear() {
		t.Fatal("Clear did not commit")
	}
	if s.Clear() {
		t.Fatal("Clear of empty list committed")
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after Clear", s.Len())
	}
	if len(changes) != 1 || len(changes[0].Records) != 0 {
		t.Fatalf("changes = %+v, want one empty change", changes)
	}

	if ok, _ := s.ReplaceAll(sample()); !ok {
		t.Fatal("ReplaceAll after Clear did not repopulate")
	}
	if got := ids(s.Records()); !reflect.DeepEqual(got, ids(sample())) {
		t.Fatalf("repopulated ids = %v", got)
	}
}

func TestSubscribe_OneChangePerTransaction(t *testing.T) {
	s := openReady(t, Options{})

	var seqs []uint64
	unsubscribe := s.Subscribe(func(c Change) { seqs = append(seqs, c.Seq) })

	_, _ = s.ReplaceAll(sample())
	s.ToggleFavorite("Foo-Regular")
	s.PersistOrder([]string{"Foo-Regular"})
	if len(seqs) != 3 {
		t.Fatalf("got %d changes, want 3", len(seqs))
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Fatalf("sequence not increasing: %v", seqs)
		}
	}

	unsubscribe()
	s.Clear()
	if len(seqs) != 3 {
		t.Fatalf("unsubscribed callback still invoked")
	}
}

func TestSubscribe_ChangesAreCopies(t *testing.T) {
	s := openReady(t, Options{})
	s.Subscribe(func(c Change) {
		for i := range c.Records {
			c.Records[i].DisplayName = "mutated"
		}
	})
	_, _ = s.ReplaceAll(sample())
	for _, r := range s.Records() {
		if r.DisplayName == "mutated" {
			t.Fatal("subscriber mutation leaked into the store")
		}
	}
}

func TestSubscribe_ReentrantMutationIsQueued(t *testing.T) {
	s := openReady(t, Options{})

	var (
		inside  bool
		changes []Change
	)
	s.Subscribe(func(c Change) {
		if inside {
			t.Error("callback nested inside another callback")
		}
		inside = true
		defer func() { inside = false }()

		changes = append(changes, c)
		if len(changes) == 1 {
			s.ToggleFavorite("Bar-Regular")
		}
	})

	_, _ = s.ReplaceAll(sample())

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Records[2].Favorite {
		t.Fatal("first change observed the re-entrant mutation")
	}
	if !changes[1].Records[2].Favorite {
		t.Fatal("second change missing the re-entrant mutation")
	}
}

func TestPersistenceFailureDoesNotBlockMutation(t *testing.T) {
	backend := newMemBackend()
	backend.appendErr = errors.New("disk full")
	s := openReady(t, Options{Backend: backend})

	if ok, err := s.ReplaceAll(sample()); !ok || err != nil {
		t.Fatalf("ReplaceAll = %v, %v", ok, err)
	}
	s.ToggleFavorite("Foo-Bold")
	flush(t, s)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if r, _ := s.Get("Foo-Bold"); !r.Favorite {
		t.Fatal("mutation lost after persistence failure")
	}
	var perr *PersistenceError
	if !errors.As(s.LastPersistenceError(), &perr) || perr.Op != "append" {
		t.Fatalf("LastPersistenceError = %v, want append PersistenceError", s.LastPersistenceError())
	}
	if !errors.Is(perr, backend.appendErr) {
		t.Fatal("PersistenceError does not unwrap to the backend error")
	}
	if s.PersistenceFailures() != 2 {
		t.Fatalf("PersistenceFailures = %d, want 2", s.PersistenceFailures())
	}
}

func TestHydration_MergesEarlyWrites(t *testing.T) {
	backend := newMemBackend()
	disk := crdt.New("disk")
	txn := disk.Begin()
	txn.Insert(font.Record{ID: "A", Family: "Foo"})
	u, _ := txn.Commit()
	backend.logs[DefaultDocument] = []crdt.Update{u}
	backend.gate = make(chan struct{})

	s, err := Open(Options{Document: DefaultDocument, Backend: backend, Replica: "local"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	peer := crdt.New("peer")
	txn = peer.Begin()
	txn.Insert(font.Record{ID: "B", Family: "Foo"})
	early, _ := txn.Commit()
	if ok, err := s.Merge(early); !ok || err != nil {
		t.Fatalf("Merge before ready = %v, %v", ok, err)
	}

	close(backend.gate)
	if err := s.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	got := ids(s.Records())
	if len(got) != 2 {
		t.Fatalf("records = %v, want A and B", got)
	}
	flush(t, s)
	if backend.rows(DefaultDocument) != 2 {
		t.Fatalf("backend rows = %d, want early write persisted", backend.rows(DefaultDocument))
	}
}

func TestReconcile_KeepsFavoritesOfSurvivors(t *testing.T) {
	s := openReady(t, Options{})
	_, _ = s.ReplaceAll([]font.Record{
		{ID: "A", DisplayName: "A", Family: "Foo"},
		{ID: "B", DisplayName: "B", Family: "Foo"},
	})
	s.ToggleFavorite("A")
	s.PersistOrder([]string{"A"})

	if !s.Reconcile([]font.Record{
		{ID: "A", DisplayName: "A renamed", Family: "Foo"},
		{ID: "C", DisplayName: "C", Family: "Bar"},
	}) {
		t.Fatal("Reconcile did not commit")
	}

	got := s.Records()
	if want := []string{"A", "C"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
	if rank, ok := got[0].Rank(); !ok || rank != 0 || got[0].DisplayName != "A renamed" {
		t.Fatalf("A = %+v, want renamed favorite with rank 0", got[0])
	}
	if s.Reconcile([]font.Record{
		{ID: "A", DisplayName: "A renamed", Family: "Foo"},
		{ID: "C", DisplayName: "C", Family: "Bar"},
	}) {
		t.Fatal("identical Reconcile committed")
	}
}

func TestPull_MergesOtherWriters(t *testing.T) {
	backend := newMemBackend()
	reader := openReady(t, Options{Backend: backend, Replica: "reader"})
	writer := openReady(t, Options{Backend: backend, Replica: "writer"})

	_, _ = writer.ReplaceAll(sample())
	writer.ToggleFavorite("Bar-Regular")
	flush(t, writer)

	changed, err := reader.Pull(context.Background())
	if err != nil || !changed {
		t.Fatalf("Pull = %v, %v, want true, nil", changed, err)
	}
	if !reflect.DeepEqual(reader.Records(), writer.Records()) {
		t.Fatalf("reader = %v, writer = %v", ids(reader.Records()), ids(writer.Records()))
	}
	if changed, _ := reader.Pull(context.Background()); changed {
		t.Fatal("second Pull reported a change")
	}
}

func TestPull_UndecodableRowsAreNotFailures(t *testing.T) {
	tests := []struct {
		name         string
		loadErr      error
		wantFailures int
	}{
		{"malformed rows are skipped", fmt.Errorf("row 7: %w", crdt.ErrMalformed), 0},
		{"backend errors are recorded", errors.New("database is locked"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMemBackend()
			reader := openReady(t, Options{Backend: backend, Replica: "reader"})
			writer := openReady(t, Options{Backend: backend, Replica: "writer"})
			_, _ = writer.ReplaceAll(sample())
			flush(t, writer)

			backend.setLoadErr(tt.loadErr)
			for i := 0; i < 3; i++ {
				if _, err := reader.Pull(context.Background()); err != nil {
					t.Fatalf("Pull %d: %v", i, err)
				}
			}
			if got := len(reader.Records()); got != len(sample()) {
				t.Fatalf("reader holds %d records, want %d", got, len(sample()))
			}
			if got := reader.PersistenceFailures(); got != tt.wantFailures {
				t.Fatalf("PersistenceFailures = %d, want %d", got, tt.wantFailures)
			}
		})
	}
}

func TestCompaction_FoldsLog(t *testing.T) {
	backend := newMemBackend()
	s := openReady(t, Options{Backend: backend, CompactAfter: 2})

	_, _ = s.ReplaceAll(sample())
	s.ToggleFavorite("Foo-Regular")
	s.ToggleFavorite("Foo-Bold")
	flush(t, s)

	if backend.compactions == 0 {
		t.Fatal("log was never compacted")
	}
	if n := backend.rows(DefaultDocument); n > 2 {
		t.Fatalf("rows after compaction = %d", n)
	}

	again := openReady(t, Options{Backend: backend})
	if !reflect.DeepEqual(again.Records(), s.Records()) {
		t.Fatalf("rehydrated = %+v, want %+v", again.Records(), s.Records())
	}
}

func TestSQLiteBackend_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fontshelf.db")

	db, err := persist.Open(path)
	if err != nil {
		t.Fatalf("persist.Open: %v", err)
	}
	s, err := Open(Options{Document: DefaultDocument, Backend: db})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	_, _ = s.ReplaceAll(sample())
	s.ToggleFavorite("Bar-Regular")
	s.PersistOrder([]string{"Bar-Regular"})
	want := s.Records()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("db.Close: %v", err)
	}

	db, err = persist.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	restored := openReady(t, Options{Backend: db})
	if got := restored.Records(); !reflect.DeepEqual(got, want) {
		t.Fatalf("restored = %+v, want %+v", got, want)
	}
}
