package notify

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyd/pkg/authchain"
	"github.com/dmitrymomot/notifyd/pkg/bus"
	"github.com/dmitrymomot/notifyd/pkg/capability"
	"github.com/dmitrymomot/notifyd/pkg/history"
	"github.com/dmitrymomot/notifyd/pkg/pending"
	"github.com/dmitrymomot/notifyd/pkg/pincode"
	"github.com/dmitrymomot/notifyd/pkg/systime"
)

// blockMask is the administrative availability check applied before
// accepting a request. A missing UI subscriber is deliberately excluded: it
// defers delivery through the pending queues instead of rejecting.
const blockMask = capability.FlagAll &^ capability.FlagUI

// notiEntry is a queued generic-notification operation. Removals replay
// differently from creations when the queue drains.
type notiEntry struct {
	payload   map[string]any
	ids       []string
	displayID int
	removal   bool
	removeAll bool
}

// Service is the notification manager façade. It validates inbound
// requests, consults the readiness gate, runs alert actions through the
// authorization chain, and either posts to the presentation bus or parks
// payloads in the pending queues until the matching surface subscribes.
type Service struct {
	gate    *capability.Gate
	bus     bus.Bus
	storage history.Storage
	chain   *authchain.Chain
	prompts *pincode.Manager
	clock   *systime.Source
	logger  *slog.Logger
	now     func() time.Time

	// retention is the default lifetime of a persisted notification when
	// the request carries no schedule.
	retention time.Duration

	mu        sync.Mutex
	toasts    *pending.Queue[map[string]any]
	alerts    *pending.Queue[map[string]any]
	notis     *pending.Queue[notiEntry]
	notiReady bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock used for ids and schedules.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetention sets the default notification lifetime.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// New creates the orchestrator and wires bus presence to the readiness gate:
// a surface's first subscriber clears its UI block and drains the matching
// queue, the last subscriber leaving restores the block. The prompt surface
// going away additionally cancels any live prompt session.
func New(
	gate *capability.Gate,
	b bus.Bus,
	storage history.Storage,
	chain *authchain.Chain,
	prompts *pincode.Manager,
	clock *systime.Source,
	opts ...Option,
) *Service {
	s := &Service{
		gate:      gate,
		bus:       b,
		storage:   storage,
		chain:     chain,
		prompts:   prompts,
		clock:     clock,
		logger:    slog.Default(),
		now:       time.Now,
		retention: 30 * 24 * time.Hour,
		toasts:    pending.New[map[string]any](),
		alerts:    pending.New[map[string]any](),
		notis:     pending.New[notiEntry](),
	}
	for _, opt := range opts {
		opt(s)
	}

	_ = gate.Subscribe(capability.KindToast, func(available bool) {
		if available {
			s.drainToasts()
		}
	})
	_ = gate.Subscribe(capability.KindAlert, func(available bool) {
		if available {
			s.drainAlerts()
		}
	})

	b.OnPresence(s.handlePresence)
	return s
}

func (s *Service) handlePresence(channel bus.Channel, attached bool) {
	switch channel {
	case bus.ChannelToast:
		s.flagUI(capability.KindToast, attached)
	case bus.ChannelAlert:
		s.flagUI(capability.KindAlert, attached)
	case bus.ChannelInput:
		s.flagUI(capability.KindInput, attached)
	case bus.ChannelPrompt:
		s.flagUI(capability.KindPinPrompt, attached)
		if !attached {
			s.prompts.Cancel(context.Background())
		}
	case bus.ChannelNotification:
		s.mu.Lock()
		s.notiReady = attached
		s.mu.Unlock()
		if attached {
			s.drainNotis()
		}
	}
}

func (s *Service) flagUI(kind capability.Kind, attached bool) {
	if attached {
		_ = s.gate.Unblock(kind, capability.FlagUI, "")
	} else {
		_ = s.gate.Block(kind, capability.FlagUI, "")
	}
}

func (s *Service) drainToasts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	forwarded, failed := s.toasts.Drain(func(payload map[string]any) error {
		return s.bus.Post(context.Background(), bus.ChannelToast, payload)
	})
	s.logDrain(bus.ChannelToast, forwarded, failed)
}

func (s *Service) drainAlerts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	forwarded, failed := s.alerts.Drain(func(payload map[string]any) error {
		return s.bus.Post(context.Background(), bus.ChannelAlert, payload)
	})
	s.logDrain(bus.ChannelAlert, forwarded, failed)
}

func (s *Service) drainNotis() {
	s.mu.Lock()
	defer s.mu.Unlock()

	forwarded, failed := s.notis.Drain(func(entry notiEntry) error {
		return s.dispatchNoti(context.Background(), entry)
	})
	s.logDrain(bus.ChannelNotification, forwarded, failed)
}

func (s *Service) logDrain(channel bus.Channel, forwarded, failed int) {
	if forwarded == 0 && failed == 0 {
		return
	}
	s.logger.Info("pending queue drained",
		slog.String("channel", string(channel)),
		slog.Int("forwarded", forwarded),
		slog.Int("failed", failed))
}

// dispatchNoti performs the storage side effects of a generic-notification
// entry and posts its payload.
func (s *Service) dispatchNoti(ctx context.Context, entry notiEntry) error {
	switch {
	case entry.removeAll:
		if _, err := s.storage.Delete(ctx, history.Filter{
			DisplayID:     &entry.displayID,
			DeletableOnly: true,
		}); err != nil {
			return err
		}
	case entry.removal:
		if _, err := s.storage.Delete(ctx, history.Filter{IDs: entry.ids}); err != nil {
			return err
		}
	default:
		if err := s.saveRecord(ctx, entry.payload); err != nil {
			return err
		}
	}
	return s.bus.Post(ctx, bus.ChannelNotification, entry.payload)
}

func (s *Service) saveRecord(ctx context.Context, payload map[string]any) error {
	rec := history.Record{
		SourceID:  str(payload["sourceId"]),
		Title:     str(payload["title"]),
		Message:   str(payload["message"]),
		Timestamp: str(payload["timestamp"]),
		ToastID:   str(payload["toastId"]),
		NotiID:    str(payload["notiId"]),
	}
	if v, ok := payload["isUnDeletable"].(bool); ok {
		rec.IsUnDeletable = v
	}
	if v, ok := payload["displayId"].(int); ok {
		rec.DisplayID = v
	}
	if sch, ok := payload["schedule"].(*history.Schedule); ok {
		rec.Schedule = sch
	}
	return s.storage.Save(ctx, rec)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// resolveSource returns the effective source id: callers use their own id
// unless privileged.
func (s *Service) resolveSource(p Principal, requested string) (string, error) {
	if requested == "" {
		if p.ID == "" {
			return "", errValidation("Source id is required")
		}
		return p.ID, nil
	}
	if requested != p.ID && !p.Privileged {
		return "", &PermissionError{Text: "Source id does not match caller id"}
	}
	return requested, nil
}

// checkBlocked applies the administrative availability check.
func (s *Service) checkBlocked(kind capability.Kind, ignoreDisable bool) error {
	if ignoreDisable {
		return nil
	}
	if !s.gate.Available(kind, blockMask) {
		return &BlockedError{Reason: s.gate.Reason(kind)}
	}
	return nil
}

// resolveSchedule validates an explicit expiry or applies the default
// retention period. Explicit expiries require a trusted clock.
func (s *Service) resolveSchedule(req *history.Schedule) (*history.Schedule, error) {
	now := s.now()
	if req == nil || req.Expire == 0 {
		return &history.Schedule{Expire: now.Add(s.retention).Unix()}, nil
	}
	if !s.clock.Synced() {
		return nil, errValidation("Time has not been synchronized yet")
	}
	if req.Expire <= now.Unix() {
		return nil, errValidation("Expiry time must be in the future")
	}
	if req.Expire > history.MaxTimestamp {
		return nil, errValidation("Expiry time is out of range")
	}
	return &history.Schedule{Expire: req.Expire}, nil
}

func (s *Service) timestamp() string {
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}

func makeID(sourceID, timestamp string) string {
	return sourceID + "-" + timestamp
}

var escapeScrubber = strings.NewReplacer(
	"\n", " ", "\t", " ", "\v", " ", "\f", " ", "\r", " ",
)

// scrub flattens control characters that would break the single-line
// display surfaces.
func scrub(text string) string {
	return escapeScrubber.Replace(text)
}

func validURI(uri string) bool {
	return strings.Contains(uri, "://")
}
