package fontstore

import (
	"sync"

	"github.com/five82/fontshelf/internal/crdt"
)

type writeReq struct {
	update *crdt.Update
	done   chan struct{}
}

// writer is the queue between committed transactions and the backend.
type writer struct {
	mu      sync.Mutex
	queue   []writeReq
	enabled bool
	closed  bool

	kick      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (w *writer) init(enabled bool) {
	w.enabled = enabled
	w.kick = make(chan struct{}, 1)
	w.done = make(chan struct{})
}

func (w *writer) enqueue(u crdt.Update) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled || w.closed {
		return
	}
	w.queue = append(w.queue, writeReq{update: &u})
}

// barrier queues a marker that is closed once everything before it is written.
func (w *writer) barrier() (chan struct{}, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled || w.closed {
		return nil, false
	}
	done := make(chan struct{})
	w.queue = append(w.queue, writeReq{done: done})
	return done, true
}

func (w *writer) take() ([]writeReq, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := w.queue
	w.queue = nil
	return batch, w.closed
}

func (w *writer) signal() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.signal()
}

func (s *Store) runWriter() {
	defer close(s.w.done)
	<-s.ready

	for {
		batch, closed := s.w.take()
		for _, req := range batch {
			if req.update != nil {
				s.write(*req.update)
			}
			if req.done != nil {
				close(req.done)
			}
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-s.w.kick
	}
}

func (s *Store) write(u crdt.Update) {
	n, err := s.backend.Append(s.ctx, s.document, u)
	if err != nil {
		s.recordPersistenceError("append", err)
		return
	}
	if s.compactAfter > 0 && n > s.compactAfter {
		s.compact()
	}
}

func (s *Store) compact() {
	changed := false
	err := s.backend.Compact(s.ctx, s.document, func(stored []crdt.Update) (crdt.Update, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, u := range stored {
			if s.doc.Apply(u) {
				changed = true
			}
		}
		if changed {
			s.queueChangeLocked()
		}
		return s.doc.Snapshot(), nil
	})
	if err != nil {
		s.recordPersistenceError("compact", err)
	} else {
		s.logger.Debug("compacted update log")
	}
	if changed {
		s.drain()
	}
}
