package history

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BootWarm is the boot kind that may trigger a purge when the clock is
// already trusted at startup.
const BootWarm = "warm"

// Scheduler purges expired records exactly once per process lifetime.
//
// Devices boot with an untrusted clock, so purging must wait for the first
// time sync. A warm boot with time already synced never receives that sync
// signal, which is why the boot path exists. Whichever path fires first wins;
// the latch makes every later signal a no-op.
type Scheduler struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration

	mu     sync.Mutex
	purged bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger used for purge outcomes.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchedulerClock overrides the purge cutoff clock.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler creates a purge scheduler over the given storage.
func NewScheduler(storage Storage, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		storage: storage,
		logger:  slog.Default(),
		now:     time.Now,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleSync reacts to a system time sync signal.
func (s *Scheduler) HandleSync(synced bool) {
	if !synced {
		return
	}
	s.purgeOnce()
}

// HandleBoot reacts to a boot signal. Only a warm boot with the clock
// already trusted triggers a purge.
func (s *Scheduler) HandleBoot(kind string, synced bool) {
	if kind != BootWarm || !synced {
		return
	}
	s.purgeOnce()
}

// Purged reports whether the one-shot purge has run.
func (s *Scheduler) Purged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purged
}

func (s *Scheduler) purgeOnce() {
	s.mu.Lock()
	if s.purged {
		s.mu.Unlock()
		return
	}
	s.purged = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.storage.PurgeExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("expired record purge failed", slog.Any("error", err))
		return
	}
	s.logger.Info("expired records purged", slog.Int64("removed", removed))
}
