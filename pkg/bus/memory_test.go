package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PostDelivers(t *testing.T) {
	m := NewMemory(4)
	defer m.Close()

	sub, err := m.Subscribe(context.Background(), ChannelToast)
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID())

	require.NoError(t, m.Post(context.Background(), ChannelToast, map[string]any{"message": "hi"}))

	select {
	case env := <-sub.Receive():
		assert.Equal(t, ChannelToast, env.Channel)
		assert.Equal(t, "hi", env.Payload["message"])
	case <-time.After(time.Second):
		t.Fatal("expected envelope")
	}
}

func TestMemory_BurstLargerThanBuffer(t *testing.T) {
	m := NewMemory(4)
	defer m.Close()

	sub, err := m.Subscribe(context.Background(), ChannelToast)
	require.NoError(t, err)

	const burst = 20
	for i := 0; i < burst; i++ {
		require.NoError(t, m.Post(context.Background(), ChannelToast, map[string]any{"seq": i}))
	}

	// Every envelope arrives, in post order, and the subscriber stays attached.
	for i := 0; i < burst; i++ {
		select {
		case env := <-sub.Receive():
			assert.Equal(t, i, env.Payload["seq"])
		case <-time.After(time.Second):
			t.Fatalf("envelope %d never arrived", i)
		}
	}
	assert.True(t, m.Attached(ChannelToast))
}

func TestMemory_ChannelIsolation(t *testing.T) {
	m := NewMemory(4)
	defer m.Close()

	toastSub, err := m.Subscribe(context.Background(), ChannelToast)
	require.NoError(t, err)

	require.NoError(t, m.Post(context.Background(), ChannelAlert, map[string]any{"message": "modal"}))

	select {
	case <-toastSub.Receive():
		t.Fatal("toast subscriber must not see alert envelopes")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemory_PresenceTransitions(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()

	type event struct {
		channel  Channel
		attached bool
	}
	var events []event
	m.OnPresence(func(ch Channel, attached bool) {
		events = append(events, event{ch, attached})
	})

	first, err := m.Subscribe(context.Background(), ChannelAlert)
	require.NoError(t, err)
	second, err := m.Subscribe(context.Background(), ChannelAlert)
	require.NoError(t, err)

	// Only the 0->1 transition fires.
	require.Equal(t, []event{{ChannelAlert, true}}, events)

	require.NoError(t, first.Close())
	assert.Len(t, events, 1)

	require.NoError(t, second.Close())
	require.Equal(t, []event{{ChannelAlert, true}, {ChannelAlert, false}}, events)
	assert.False(t, m.Attached(ChannelAlert))
}

func TestMemory_UnknownChannel(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()

	_, err := m.Subscribe(context.Background(), Channel("bogus"))
	assert.ErrorIs(t, err, ErrUnknownChannel)

	err = m.Post(context.Background(), Channel("bogus"), nil)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestMemory_ContextCancelDetaches(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := m.Subscribe(ctx, ChannelPrompt)
	require.NoError(t, err)
	require.True(t, m.Attached(ChannelPrompt))

	cancel()
	assert.Eventually(t, func() bool {
		return !m.Attached(ChannelPrompt)
	}, time.Second, 10*time.Millisecond)
}

func TestMemory_ClosedBus(t *testing.T) {
	m := NewMemory(1)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.Subscribe(context.Background(), ChannelToast)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Post(context.Background(), ChannelToast, nil), ErrClosed)
}
