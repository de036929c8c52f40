package fontstore

import "github.com/five82/fontshelf/internal/font"

// Subscribe registers fn for change notifications and returns a function that
// removes it. fn must not block for long: deliveries are sequential.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.nmu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.nmu.Unlock()

	return func() {
		s.nmu.Lock()
		defer s.nmu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// queueChangeLocked records a change for delivery. Callers hold s.mu, which
// keeps queued changes in commit order.
func (s *Store) queueChangeLocked() {
	s.seq++
	change := Change{Seq: s.seq, Records: s.doc.Records()}
	s.nmu.Lock()
	s.pending = append(s.pending, change)
	s.nmu.Unlock()
}

// drain delivers queued changes. Only one goroutine delivers at a time; a
// caller that finds delivery in progress leaves its change to that goroutine,
// which is what keeps callbacks from nesting.
func (s *Store) drain() {
	s.nmu.Lock()
	if s.delivering {
		s.nmu.Unlock()
		return
	}
	s.delivering = true
	s.nmu.Unlock()

	for {
		s.nmu.Lock()
		if len(s.pending) == 0 {
			// Cleared under the same lock as the empty check so a change
			// queued after this point starts a new deliverer.
			s.delivering = false
			s.nmu.Unlock()
			return
		}
		change := s.pending[0]
		s.pending = s.pending[1:]
		subs := append([]subscriber(nil), s.subs...)
		s.nmu.Unlock()

		for _, sub := range subs {
			sub.fn(Change{Seq: change.Seq, Records: font.CloneRecords(change.Records)})
		}
	}
}
