package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Machine is a thread-safe in-memory finite state machine. Transition lookup
// uses a nested map [fromState][event][]Transition; multiple transitions may
// share a (from, event) pair, with guards selecting the first that applies.
type Machine struct {
	initialState State
	currentState State
	transitions  map[string]map[string][]Transition
	mu           sync.RWMutex
}

// Option configures a machine during construction.
type Option func(*Machine) error

// WithTransition adds a transition to the machine.
func WithTransition(t Transition) Option {
	return func(m *Machine) error {
		return m.AddTransition(t)
	}
}

// New creates a machine starting in initialState.
func New(initialState State, opts ...Option) (*Machine, error) {
	if initialState == nil {
		return nil, fmt.Errorf("initial state cannot be nil")
	}

	m := &Machine{
		initialState: initialState,
		currentState: initialState,
		transitions:  make(map[string]map[string][]Transition),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew creates a machine and panics if any option fails to apply.
func MustNew(initialState State, opts ...Option) *Machine {
	m, err := New(initialState, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// AddTransition registers a transition.
func (m *Machine) AddTransition(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromName := t.From.Name()
	eventName := t.Event.Name()

	if _, ok := m.transitions[fromName]; !ok {
		m.transitions[fromName] = make(map[string][]Transition)
	}
	// Multiple transitions per from/event support guard-based branching.
	m.transitions[fromName][eventName] = append(m.transitions[fromName][eventName], t)
	return nil
}

// Fire applies the event. Among the transitions registered for the current
// state and event, the first whose guards all pass wins; its actions run in
// order before the state changes, and any action error aborts the transition.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	transitions := m.candidates(event)
	if len(transitions) == 0 {
		return NewErrNoTransitionAvailable(m.currentState.Name(), event.Name())
	}

	var selected *Transition
	for i, t := range transitions {
		if m.guardsPass(ctx, t, event, data) {
			selected = &transitions[i]
			break
		}
	}
	if selected == nil {
		return NewErrTransitionRejected(m.currentState.Name(), event.Name())
	}

	for _, action := range selected.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.currentState, selected.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.currentState = selected.To
	return nil
}

// CanFire reports whether Fire would find an applicable transition.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.candidates(event) {
		if m.guardsPass(ctx, t, event, data) {
			return true
		}
	}
	return false
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentState = m.initialState
}

// candidates must be called with the lock held.
func (m *Machine) candidates(event Event) []Transition {
	byEvent, ok := m.transitions[m.currentState.Name()]
	if !ok {
		return nil
	}
	return byEvent[event.Name()]
}

func (m *Machine) guardsPass(ctx context.Context, t Transition, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, m.currentState, event, data) {
			return false
		}
	}
	return true
}
