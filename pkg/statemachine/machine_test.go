package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stateLocked   = StringState("locked")
	stateUnlocked = StringState("unlocked")
	eventSubmit   = StringEvent("submit")
)

func TestMachine_BasicTransition(t *testing.T) {
	m := MustNew(stateLocked,
		WithTransition(Transition{From: stateLocked, To: stateUnlocked, Event: eventSubmit}),
	)

	require.NoError(t, m.Fire(context.Background(), eventSubmit, nil))
	assert.Equal(t, stateUnlocked, m.Current())
}

func TestMachine_GuardBranching(t *testing.T) {
	match := func(_ context.Context, _ State, _ Event, data any) bool {
		return data == "1234"
	}

	m := MustNew(stateLocked,
		WithTransition(Transition{From: stateLocked, To: stateUnlocked, Event: eventSubmit, Guards: []Guard{match}}),
		WithTransition(Transition{From: stateLocked, To: stateLocked, Event: eventSubmit}),
	)

	// Wrong code: the fallback transition keeps the machine locked.
	require.NoError(t, m.Fire(context.Background(), eventSubmit, "0000"))
	assert.Equal(t, stateLocked, m.Current())

	require.NoError(t, m.Fire(context.Background(), eventSubmit, "1234"))
	assert.Equal(t, stateUnlocked, m.Current())
}

func TestMachine_ActionErrorAbortsTransition(t *testing.T) {
	boom := errors.New("boom")
	m := MustNew(stateLocked,
		WithTransition(Transition{
			From: stateLocked, To: stateUnlocked, Event: eventSubmit,
			Actions: []Action{func(context.Context, State, State, Event, any) error { return boom }},
		}),
	)

	err := m.Fire(context.Background(), eventSubmit, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, stateLocked, m.Current())
}

func TestMachine_NoTransitionAvailable(t *testing.T) {
	m := MustNew(stateLocked)

	err := m.Fire(context.Background(), eventSubmit, nil)
	assert.True(t, IsNoTransitionAvailableError(err))
}

func TestMachine_AllGuardsRejected(t *testing.T) {
	never := func(context.Context, State, Event, any) bool { return false }
	m := MustNew(stateLocked,
		WithTransition(Transition{From: stateLocked, To: stateUnlocked, Event: eventSubmit, Guards: []Guard{never}}),
	)

	err := m.Fire(context.Background(), eventSubmit, nil)
	assert.True(t, IsTransitionRejectedError(err))
	assert.False(t, m.CanFire(context.Background(), eventSubmit, nil))
}

func TestMachine_Reset(t *testing.T) {
	m := MustNew(stateLocked,
		WithTransition(Transition{From: stateLocked, To: stateUnlocked, Event: eventSubmit}),
	)
	require.NoError(t, m.Fire(context.Background(), eventSubmit, nil))

	m.Reset()
	assert.Equal(t, stateLocked, m.Current())
}

func TestMachine_InvalidTransition(t *testing.T) {
	_, err := New(stateLocked, WithTransition(Transition{From: stateLocked, Event: eventSubmit}))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
