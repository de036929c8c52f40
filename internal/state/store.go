package state

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the lifecycle position of the font sync controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePopulated
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePopulated:
		return "populated"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// ErrorKind tags why the controller entered PhaseError.
type ErrorKind string

const (
	ErrorNone        ErrorKind = ""
	ErrorUnsupported ErrorKind = "unsupported"
	ErrorDenied      ErrorKind = "denied"
	ErrorEnumeration ErrorKind = "enumeration"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Loading    bool
	Error      string // empty when there is nothing to show
	Phase      Phase
	Kind       ErrorKind
	Permission string
	Generation uint64

	LastUpdated time.Time

	// Pull loop health.
	LastSync            time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive pull failures
}

// IsOffline returns true when storage pulls have failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin marks the start of a load attempt for generation gen.
func (s *Store) Begin(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Loading = true
	s.snapshot.Error = ""
	s.snapshot.Kind = ErrorNone
	s.snapshot.Phase = PhaseLoading
	s.snapshot.Generation = gen
	s.snapshot.LastUpdated = time.Now()
}

// SetPermission records the host's last permission answer.
func (s *Store) SetPermission(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Permission = p
}

// Populated ends an attempt successfully.
func (s *Store) Populated() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Loading = false
	s.snapshot.Error = ""
	s.snapshot.Kind = ErrorNone
	s.snapshot.Phase = PhasePopulated
	s.snapshot.LastUpdated = time.Now()
}

// Fail ends an attempt with err. The message is shown as-is.
func (s *Store) Fail(kind ErrorKind, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Loading = false
	s.snapshot.Kind = kind
	s.snapshot.Phase = PhaseError
	if err != nil {
		s.snapshot.Error = err.Error()
	} else {
		s.snapshot.Error = string(kind)
	}
	s.snapshot.LastUpdated = time.Now()
}

// Reset returns the lifecycle fields to idle for generation gen. Pull health
// is kept.
func (s *Store) Reset(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Loading = false
	s.snapshot.Error = ""
	s.snapshot.Kind = ErrorNone
	s.snapshot.Phase = PhaseIdle
	s.snapshot.Permission = ""
	s.snapshot.Generation = gen
	s.snapshot.LastUpdated = time.Now()
}

// RecordSync stores the outcome of a storage pull. When err is non-nil the
// failure counter grows; success resets it.
func (s *Store) RecordSync(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastSync = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
