package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/fontshelf/internal/state"
)

const (
	defaultPullInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// Puller merges writes other processes made to shared storage.
type Puller interface {
	Pull(ctx context.Context) (bool, error)
}

// StartPuller launches a background goroutine that pulls at interval and
// records each outcome in st. Consecutive failures back off exponentially up
// to maxBackoff. The returned channel is closed when the goroutine exits.
func StartPuller(ctx context.Context, p Puller, st *state.Store, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPullInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "puller")

	done := make(chan struct{})
	go func() {
		defer close(done)

		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			changed, err := p.Pull(ctx)
			if ctx.Err() != nil {
				return
			}
			st.RecordSync(err)
			if err != nil {
				failures++
				logger.Warn("pull failed", "error", err, "failures", failures)
			} else {
				if failures > 0 {
					logger.Info("pull recovered", "after_failures", failures)
				}
				failures = 0
				if changed {
					logger.Debug("merged remote changes")
				}
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
	return done
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
