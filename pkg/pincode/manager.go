package pincode

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyd/pkg/settings"
	"github.com/dmitrymomot/notifyd/pkg/statemachine"
)

// Mode identifies the prompt workflow requested by the caller. The values
// travel on the wire as promptType.
type Mode string

const (
	// ModeParental asks the viewer to confirm the parental-control PIN.
	ModeParental Mode = "parental"
	// ModeSetMatch verifies the current PIN before allowing a change.
	ModeSetMatch Mode = "set_match"
	// ModeSetNewPin collects the replacement PIN.
	ModeSetNewPin Mode = "set_newpin"
	// ModeSetVerify re-collects the replacement PIN before committing it.
	ModeSetVerify Mode = "set_verify"
)

// Valid reports whether the mode may start a session. The set_newpin and
// set_verify modes are internal steps and cannot be opened directly.
func (m Mode) Valid() bool {
	return m == ModeParental || m == ModeSetMatch
}

// CloseTypeRelay marks a close call relaying a code submitted through the
// prompt UI. Any other close type tears the session down unconditionally.
const CloseTypeRelay = "relay"

// Result is the terminal outcome delivered to the retained open request.
type Result struct {
	Matched bool
	Err     error
}

// Poster delivers prompt payloads to the display surface.
type Poster interface {
	PostPrompt(ctx context.Context, payload map[string]any) error
}

var (
	stateIdle      = statemachine.StringState("idle")
	stateParental  = statemachine.StringState(ModeParental)
	stateSetMatch  = statemachine.StringState(ModeSetMatch)
	stateSetNewPin = statemachine.StringState(ModeSetNewPin)
	stateSetVerify = statemachine.StringState(ModeSetVerify)

	eventOpen   = statemachine.StringEvent("open")
	eventRelay  = statemachine.StringEvent("relay")
	eventClose  = statemachine.StringEvent("close")
	eventCancel = statemachine.StringEvent("cancel")
)

type openData struct {
	mode Mode
}

type relayData struct {
	code string
}

// Manager owns the single prompt session slot and drives its workflow.
//
// At most one session exists at any time. The open request's reply
// continuation is retained until a terminal transition: a confirmed match, a
// committed PIN change, a non-relay close, or a cancellation because the
// prompt surface went away. Every intermediate step re-posts an open payload
// so the UI shows the next entry screen.
type Manager struct {
	system *settings.System
	svc    settings.Service
	poster Poster
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	fsm     *statemachine.Machine
	session *session
}

type session struct {
	mode      Mode
	candidate string
	reply     func(Result)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for post failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a prompt manager over the cached system settings, the
// settings service used to commit PIN changes, and the display poster.
func NewManager(system *settings.System, svc settings.Service, poster Poster, opts ...Option) *Manager {
	m := &Manager{
		system: system,
		svc:    svc,
		poster: poster,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.fsm = statemachine.MustNew(stateIdle,
		statemachine.WithTransition(statemachine.Transition{
			From: stateIdle, To: stateParental, Event: eventOpen,
			Guards:  []statemachine.Guard{m.openGuard(ModeParental)},
			Actions: []statemachine.Action{m.reopen(ModeParental, false)},
		}),
		statemachine.WithTransition(statemachine.Transition{
			From: stateIdle, To: stateSetMatch, Event: eventOpen,
			Guards:  []statemachine.Guard{m.openGuard(ModeSetMatch)},
			Actions: []statemachine.Action{m.reopen(ModeSetMatch, false)},
		}),

		statemachine.WithTransition(statemachine.Transition{
			From: stateParental, To: stateIdle, Event: eventRelay,
			Guards:  []statemachine.Guard{m.pinMatches()},
			Actions: []statemachine.Action{m.resolve(true)},
		}),
		statemachine.WithTransition(statemachine.Transition{
			From: stateParental, To: stateParental, Event: eventRelay,
			Actions: []statemachine.Action{m.reopen(ModeParental, true)},
		}),

		statemachine.WithTransition(statemachine.Transition{
			From: stateSetMatch, To: stateSetNewPin, Event: eventRelay,
			Guards:  []statemachine.Guard{m.pinMatches()},
			Actions: []statemachine.Action{m.reopen(ModeSetNewPin, false)},
		}),
		statemachine.WithTransition(statemachine.Transition{
			From: stateSetMatch, To: stateSetMatch, Event: eventRelay,
			Actions: []statemachine.Action{m.reopen(ModeSetMatch, true)},
		}),

		statemachine.WithTransition(statemachine.Transition{
			From: stateSetNewPin, To: stateSetVerify, Event: eventRelay,
			Guards:  []statemachine.Guard{m.newPinAcceptable()},
			Actions: []statemachine.Action{m.cacheCandidate(), m.reopen(ModeSetVerify, false)},
		}),
		statemachine.WithTransition(statemachine.Transition{
			From: stateSetNewPin, To: stateSetNewPin, Event: eventRelay,
			Actions: []statemachine.Action{m.reopen(ModeSetNewPin, true)},
		}),

		statemachine.WithTransition(statemachine.Transition{
			From: stateSetVerify, To: stateIdle, Event: eventRelay,
			Guards:  []statemachine.Guard{m.verifyMatches()},
			Actions: []statemachine.Action{m.commit(), m.resolve(true)},
		}),
		statemachine.WithTransition(statemachine.Transition{
			From: stateSetVerify, To: stateSetVerify, Event: eventRelay,
			Actions: []statemachine.Action{m.reopen(ModeSetVerify, true)},
		}),
	)

	for _, active := range []statemachine.State{stateParental, stateSetMatch, stateSetNewPin, stateSetVerify} {
		_ = m.fsm.AddTransition(statemachine.Transition{
			From: active, To: stateIdle, Event: eventClose,
			Actions: []statemachine.Action{m.resolve(false)},
		})
		_ = m.fsm.AddTransition(statemachine.Transition{
			From: active, To: stateIdle, Event: eventCancel,
			Actions: []statemachine.Action{m.fail(ErrPromptUnavailable)},
		})
	}

	return m
}

// Active reports whether a prompt session is live.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Mode returns the current session mode, if any.
func (m *Manager) Mode() (Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", false
	}
	return m.session.mode, true
}

// Open starts a new prompt session. The reply continuation is retained and
// invoked exactly once, on the session's terminal transition. A second open
// while a session is live fails without touching the first session.
func (m *Manager) Open(ctx context.Context, mode Mode, reply func(Result)) error {
	if reply == nil {
		return ErrNilReply
	}
	if !mode.Valid() {
		return ErrUnknownMode
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return ErrPromptActive
	}

	m.session = &session{mode: mode, reply: reply}
	if err := m.fsm.Fire(ctx, eventOpen, openData{mode: mode}); err != nil {
		m.session = nil
		return err
	}
	return nil
}

// Close handles a close call from the prompt UI. A relay close carries the
// submitted code and advances the workflow; any other close type is terminal
// and answers the retained request with matched=false regardless of mode.
func (m *Manager) Close(ctx context.Context, closeType, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return ErrPromptUnavailable
	}

	if closeType != CloseTypeRelay {
		return m.fsm.Fire(ctx, eventClose, nil)
	}
	return m.fsm.Fire(ctx, eventRelay, relayData{code: code})
}

// Cancel tears down the session because the prompt surface became
// unavailable. The retained request fails with ErrPromptUnavailable. No-op
// without a session.
func (m *Manager) Cancel(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return
	}
	if err := m.fsm.Fire(ctx, eventCancel, nil); err != nil {
		m.logger.Error("prompt cancellation failed", slog.Any("error", err))
	}
}

func (m *Manager) openGuard(mode Mode) statemachine.Guard {
	return func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		od, ok := data.(openData)
		return ok && od.mode == mode
	}
}

func (m *Manager) pinMatches() statemachine.Guard {
	return func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		rd, ok := data.(relayData)
		if !ok {
			return false
		}
		v := NewValidator(m.system.SystemPin(), m.system.SystemPinHash())
		return v.Check(rd.code)
	}
}

func (m *Manager) newPinAcceptable() statemachine.Guard {
	return func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		rd, ok := data.(relayData)
		if !ok {
			return false
		}
		return rd.code != "" && !Unacceptable(m.system.Country(), rd.code)
	}
}

func (m *Manager) verifyMatches() statemachine.Guard {
	return func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		rd, ok := data.(relayData)
		if !ok {
			return false
		}
		return rd.code != "" && rd.code == m.session.candidate
	}
}

// reopen advances the session to the given mode and re-posts the prompt so
// the UI shows the next entry screen. Post failures are logged, not fatal;
// the session stays consistent either way.
func (m *Manager) reopen(mode Mode, retry bool) statemachine.Action {
	return func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
		m.session.mode = mode
		payload := map[string]any{
			"pincodePromptAction": "open",
			"promptType":          string(mode),
			"timestamp":           m.timestamp(),
		}
		if retry {
			payload["retry"] = true
		}
		if err := m.poster.PostPrompt(ctx, payload); err != nil {
			m.logger.Error("prompt open post failed", slog.Any("error", err))
		}
		return nil
	}
}

func (m *Manager) cacheCandidate() statemachine.Action {
	return func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
		rd := data.(relayData)
		m.session.candidate = rd.code
		return nil
	}
}

// commit persists the verified candidate as the new system PIN. Two settings
// writes: the PIN itself, then the initial-PIN-consumed flag. A write failure
// aborts the transition and keeps the session alive.
func (m *Manager) commit() statemachine.Action {
	return func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
		candidate := m.session.candidate
		if err := m.svc.Set(ctx, map[string]string{settings.KeySystemPin: candidate}); err != nil {
			return err
		}
		if err := m.svc.Set(ctx, map[string]string{settings.KeyInitialPinCode: "false"}); err != nil {
			return err
		}
		m.system.SetSystemPin(candidate)
		m.session.candidate = ""
		return nil
	}
}

func (m *Manager) resolve(matched bool) statemachine.Action {
	return func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
		payload := map[string]any{
			"pincodePromptAction": "close",
			"timestamp":           m.timestamp(),
		}
		if err := m.poster.PostPrompt(ctx, payload); err != nil {
			m.logger.Error("prompt close post failed", slog.Any("error", err))
		}

		sess := m.session
		m.session = nil
		sess.reply(Result{Matched: matched})
		return nil
	}
}

func (m *Manager) fail(cause error) statemachine.Action {
	return func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
		sess := m.session
		m.session = nil
		sess.reply(Result{Err: cause})
		return nil
	}
}

func (m *Manager) timestamp() string {
	return strconv.FormatInt(m.now().UnixMilli(), 10)
}
