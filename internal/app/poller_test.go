package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/fontshelf/internal/logging"
	"github.com/five82/fontshelf/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type scriptedPuller struct {
	results []error
	calls   chan int
	release chan struct{}
	n       int
}

// Pull reports each call and then waits for the test to release it, so the
// test can inspect state between two pulls.
func (p *scriptedPuller) Pull(ctx context.Context) (bool, error) {
	p.n++
	p.calls <- p.n
	if p.n > len(p.results) {
		<-ctx.Done()
		return false, ctx.Err()
	}
	select {
	case <-p.release:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	return p.results[p.n-1] == nil, p.results[p.n-1]
}

func TestStartPuller_RecordsOutcomes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &state.Store{}
	p := &scriptedPuller{
		results: []error{errors.New("database is locked"), errors.New("database is locked"), nil},
		calls:   make(chan int),
		release: make(chan struct{}),
	}
	done := StartPuller(ctx, p, st, time.Millisecond, logging.Discard())

	waitCall := func(want int) {
		t.Helper()
		select {
		case got := <-p.calls:
			if got != want {
				t.Fatalf("call %d, want %d", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for pull %d", want)
		}
	}

	for want := 1; want <= 3; want++ {
		waitCall(want)
		// Outcomes of earlier calls are recorded before the next call starts.
		snap := st.Snapshot()
		if snap.ConsecutiveFailures != want-1 {
			t.Fatalf("before pull %d ConsecutiveFailures = %d, want %d", want, snap.ConsecutiveFailures, want-1)
		}
		if want == 3 && !snap.IsOffline() {
			t.Fatalf("after two failures snapshot = %+v, want offline", snap)
		}
		p.release <- struct{}{}
	}

	// The fourth call blocks until cancel, so the third outcome is recorded.
	waitCall(4)
	snap := st.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("after recovery snapshot = %+v, want healthy", snap)
	}
	if snap.LastSync.IsZero() {
		t.Fatal("LastSync not recorded")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("puller did not stop after cancel")
	}
}
