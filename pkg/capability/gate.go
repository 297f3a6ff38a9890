package capability

import (
	"log/slog"
	"strings"
	"sync"
)

// TransitionFunc receives the new availability of a capability. It is invoked
// exactly once per boolean flip of Available(kind, FlagAll), never on flag
// changes that do not cross the threshold.
type TransitionFunc func(available bool)

type state struct {
	blocked  Flag
	reason   string
	silenced bool
}

// Gate tracks per-capability block flags and notifies subscribers when a
// capability's overall availability flips. One Gate instance lives for the
// whole process; every mutation goes through Block/Unblock.
type Gate struct {
	mu     sync.RWMutex
	caps   map[Kind]*state
	subs   map[Kind][]TransitionFunc
	logger *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger sets the logger for the Gate.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a gate with every capability blocked on FlagUI only:
// system and external start clear, and no presentation surface has
// subscribed yet.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		caps:   make(map[Kind]*state, len(Kinds())),
		subs:   make(map[Kind][]TransitionFunc),
		logger: slog.Default(),
	}
	for _, k := range Kinds() {
		g.caps[k] = &state{blocked: FlagUI}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Block sets the given flags on the capability. Idempotent: setting an
// already-set flag changes nothing. The reason is recorded only when
// FlagExternal is part of the mask.
func (g *Gate) Block(kind Kind, flags Flag, reason string) error {
	return g.update(kind, flags, reason, true)
}

// Unblock clears the given flags on the capability. Idempotent.
func (g *Gate) Unblock(kind Kind, flags Flag, reason string) error {
	return g.update(kind, flags, reason, false)
}

// BlockAll applies Block to every capability.
func (g *Gate) BlockAll(flags Flag, reason string) {
	for _, k := range Kinds() {
		_ = g.Block(k, flags, reason)
	}
}

// UnblockAll applies Unblock to every capability.
func (g *Gate) UnblockAll(flags Flag, reason string) {
	for _, k := range Kinds() {
		_ = g.Unblock(k, flags, reason)
	}
}

func (g *Gate) update(kind Kind, flags Flag, reason string, block bool) error {
	g.mu.Lock()
	st, ok := g.caps[kind]
	if !ok {
		g.mu.Unlock()
		return ErrUnknownKind
	}

	wasAvailable := st.blocked == 0
	if block {
		st.blocked |= flags
	} else {
		st.blocked &^= flags
	}
	if flags&FlagExternal != 0 && reason != "" {
		st.reason = reason
	}
	nowAvailable := st.blocked == 0

	var subs []TransitionFunc
	if wasAvailable != nowAvailable {
		subs = append(subs, g.subs[kind]...)
	}
	g.mu.Unlock()

	g.logger.Debug("capability flags changed",
		slog.String("capability", string(kind)),
		slog.String("flags", flags.String()),
		slog.Bool("blocked", block),
		slog.String("reason", reason),
	)

	// Callbacks run without the lock so they may re-enter the gate.
	for _, fn := range subs {
		fn(nowAvailable)
	}
	return nil
}

// Available reports whether none of the mask's flags are blocked on the
// capability. Unknown kinds are never available.
func (g *Gate) Available(kind Kind, mask Flag) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st, ok := g.caps[kind]
	if !ok {
		return false
	}
	return st.blocked&mask == 0
}

// Reason renders the current block reasons of a capability for use in
// "blocked by ..." rejection texts, e.g. "[ system ui ]".
func (g *Gate) Reason(kind Kind) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st, ok := g.caps[kind]
	if !ok {
		return "[ unknown ]"
	}

	var parts []string
	if st.blocked&FlagSystem != 0 {
		parts = append(parts, "system")
	}
	if st.blocked&FlagUI != 0 {
		parts = append(parts, "ui")
	}
	if st.blocked&FlagExternal != 0 {
		if st.reason != "" {
			parts = append(parts, st.reason)
		} else {
			parts = append(parts, "external")
		}
	}
	if len(parts) == 0 {
		return "[ ]"
	}
	return "[ " + strings.Join(parts, " ") + " ]"
}

// Subscribe registers a transition callback for the capability. Callbacks are
// invoked synchronously, in registration order, once per availability flip.
func (g *Gate) Subscribe(kind Kind, fn TransitionFunc) error {
	if fn == nil {
		return ErrNilSubscriber
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.caps[kind]; !ok {
		return ErrUnknownKind
	}
	g.subs[kind] = append(g.subs[kind], fn)
	return nil
}

// SetSilenced sets the toast silence flag. Silence is orthogonal to the block
// flags: a silenced toast is accepted and acknowledged but never delivered.
func (g *Gate) SetSilenced(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.caps[KindToast].silenced = on
}

// Silenced reports the toast silence flag.
func (g *Gate) Silenced() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.caps[KindToast].silenced
}
