package systime

import (
	"log/slog"
	"sync"
	"time"
)

// Source tracks whether the system clock has been synchronized with a
// trustworthy time source and relays boot notifications. Sync subscribers
// fire only when the synced flag actually flips; repeated reports with the
// same value update the source metadata silently.
type Source struct {
	mu         sync.RWMutex
	synced     bool
	timeSource string
	utc        int64
	onSync     []func(synced bool)
	onBoot     []func(kind string)
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for the Source.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an unsynced source.
func New(opts ...Option) *Source {
	s := &Source{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSynced records a time-sync report. Sources named "" or "factory" are not
// trustworthy and mark the clock unsynced. Subscribers are notified only when
// the synced flag flips.
func (s *Source) SetSynced(synced bool, timeSource string, utc int64) {
	if timeSource == "" || timeSource == "factory" {
		synced = false
	}

	s.mu.Lock()
	flipped := s.synced != synced
	s.synced = synced
	s.timeSource = timeSource
	s.utc = utc
	var subs []func(bool)
	if flipped {
		subs = append(subs, s.onSync...)
	}
	s.mu.Unlock()

	s.logger.Info("system time sync report",
		slog.Bool("synced", synced),
		slog.String("time_source", timeSource),
		slog.Int64("utc", utc),
	)

	for _, fn := range subs {
		fn(synced)
	}
}

// Synced reports whether the clock is trustworthy.
func (s *Source) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

// TimeSource returns the name of the last reported time source.
func (s *Source) TimeSource() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeSource
}

// Now returns the current wall-clock time.
func (s *Source) Now() time.Time {
	return s.now()
}

// OnSync registers a callback for synced-flag flips.
func (s *Source) OnSync(fn func(synced bool)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSync = append(s.onSync, fn)
}

// OnBoot registers a callback for boot notifications.
func (s *Source) OnBoot(fn func(kind string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBoot = append(s.onBoot, fn)
}

// NotifyBoot relays a boot-kind notification ("cold", "warm") to subscribers.
func (s *Source) NotifyBoot(kind string) {
	s.mu.RLock()
	subs := append([]func(string){}, s.onBoot...)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(kind)
	}
}
