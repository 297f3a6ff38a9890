package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_InitialState(t *testing.T) {
	g := NewGate()

	for _, k := range Kinds() {
		// UI is blocked until a surface subscribes; system/external are clear.
		assert.False(t, g.Available(k, FlagAll), "kind %s should start unavailable", k)
		assert.True(t, g.Available(k, FlagAll&^FlagUI), "kind %s should be clear of system/external blocks", k)
	}
}

func TestGate_BlockUnblock(t *testing.T) {
	g := NewGate()

	require.NoError(t, g.Unblock(KindToast, FlagUI, ""))
	assert.True(t, g.Available(KindToast, FlagAll))

	require.NoError(t, g.Block(KindToast, FlagSystem, ""))
	assert.False(t, g.Available(KindToast, FlagAll))
	assert.False(t, g.Available(KindToast, FlagSystem))
	assert.True(t, g.Available(KindToast, FlagExternal|FlagUI))

	require.NoError(t, g.Unblock(KindToast, FlagSystem, ""))
	assert.True(t, g.Available(KindToast, FlagAll))
}

func TestGate_BlockIdempotent(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Unblock(KindAlert, FlagUI, ""))

	var flips []bool
	require.NoError(t, g.Subscribe(KindAlert, func(available bool) {
		flips = append(flips, available)
	}))

	require.NoError(t, g.Block(KindAlert, FlagSystem, ""))
	require.NoError(t, g.Block(KindAlert, FlagSystem, ""))
	require.NoError(t, g.Unblock(KindAlert, FlagSystem, ""))
	require.NoError(t, g.Unblock(KindAlert, FlagSystem, ""))

	assert.Equal(t, []bool{false, true}, flips)
}

func TestGate_TransitionFiresOncePerFlip(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Unblock(KindToast, FlagUI, ""))

	var flips []bool
	require.NoError(t, g.Subscribe(KindToast, func(available bool) {
		flips = append(flips, available)
	}))

	// Two simultaneous block reasons: only the first crossing emits.
	require.NoError(t, g.Block(KindToast, FlagSystem, ""))
	require.NoError(t, g.Block(KindToast, FlagExternal, "powerd"))
	assert.Equal(t, []bool{false}, flips)

	// Clearing one of two reasons does not cross the threshold.
	require.NoError(t, g.Unblock(KindToast, FlagSystem, ""))
	assert.Equal(t, []bool{false}, flips)

	require.NoError(t, g.Unblock(KindToast, FlagExternal, "powerd"))
	assert.Equal(t, []bool{false, true}, flips)
}

func TestGate_ReasonRendering(t *testing.T) {
	g := NewGate()

	require.NoError(t, g.Block(KindToast, FlagSystem, ""))
	assert.Equal(t, "[ system ui ]", g.Reason(KindToast))

	require.NoError(t, g.Block(KindToast, FlagExternal, "com.webos.store"))
	assert.Equal(t, "[ system ui com.webos.store ]", g.Reason(KindToast))

	require.NoError(t, g.Unblock(KindToast, FlagAll, ""))
	assert.Equal(t, "[ ]", g.Reason(KindToast))
}

func TestGate_ExternalReasonOnlyRecordedForExternalFlag(t *testing.T) {
	g := NewGate()

	require.NoError(t, g.Block(KindAlert, FlagSystem, "should-not-stick"))
	require.NoError(t, g.Block(KindAlert, FlagExternal, ""))
	assert.Equal(t, "[ system ui external ]", g.Reason(KindAlert))
}

func TestGate_UnknownKind(t *testing.T) {
	g := NewGate()

	assert.ErrorIs(t, g.Block("banner", FlagSystem, ""), ErrUnknownKind)
	assert.False(t, g.Available("banner", FlagAll))
	assert.ErrorIs(t, g.Subscribe("banner", func(bool) {}), ErrUnknownKind)
}

func TestGate_Silence(t *testing.T) {
	g := NewGate()

	assert.False(t, g.Silenced())
	g.SetSilenced(true)
	assert.True(t, g.Silenced())

	// Silence is orthogonal to availability.
	require.NoError(t, g.Unblock(KindToast, FlagUI, ""))
	assert.True(t, g.Available(KindToast, FlagAll))
	assert.True(t, g.Silenced())
}

func TestGate_BlockAll(t *testing.T) {
	g := NewGate()
	g.UnblockAll(FlagUI, "")

	g.BlockAll(FlagSystem, "")
	for _, k := range Kinds() {
		assert.False(t, g.Available(k, FlagAll), "kind %s", k)
	}

	g.UnblockAll(FlagSystem, "")
	for _, k := range Kinds() {
		assert.True(t, g.Available(k, FlagAll), "kind %s", k)
	}
}
