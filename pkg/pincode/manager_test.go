package pincode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyd/pkg/settings"
)

type recordingPoster struct {
	payloads []map[string]any
}

func (p *recordingPoster) PostPrompt(ctx context.Context, payload map[string]any) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPoster) last() map[string]any {
	if len(p.payloads) == 0 {
		return nil
	}
	return p.payloads[len(p.payloads)-1]
}

type countingSettings struct {
	*settings.Memory
	sets int
}

func (c *countingSettings) Set(ctx context.Context, values map[string]string) error {
	c.sets++
	return c.Memory.Set(ctx, values)
}

func newTestManager(t *testing.T) (*Manager, *recordingPoster, *countingSettings, *settings.System) {
	t.Helper()

	sys := settings.NewSystem()
	sys.SetSystemPin("1234")
	svc := &countingSettings{Memory: settings.NewMemory(nil)}
	poster := &recordingPoster{}
	return NewManager(sys, svc, poster), poster, svc, sys
}

func collectResults(results *[]Result) func(Result) {
	return func(r Result) { *results = append(*results, r) }
}

func TestManager_OpenPostsPrompt(t *testing.T) {
	m, poster, _, _ := newTestManager(t)

	var results []Result
	require.NoError(t, m.Open(context.Background(), ModeParental, collectResults(&results)))

	require.Len(t, poster.payloads, 1)
	assert.Equal(t, "open", poster.payloads[0]["pincodePromptAction"])
	assert.Equal(t, "parental", poster.payloads[0]["promptType"])
	assert.NotContains(t, poster.payloads[0], "retry")
	assert.True(t, m.Active())
	assert.Empty(t, results)
}

func TestManager_SecondOpenRejected(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	var first, second []Result
	require.NoError(t, m.Open(context.Background(), ModeParental, collectResults(&first)))

	err := m.Open(context.Background(), ModeSetMatch, collectResults(&second))
	assert.ErrorIs(t, err, ErrPromptActive)

	// First session untouched.
	mode, ok := m.Mode()
	require.True(t, ok)
	assert.Equal(t, ModeParental, mode)
	assert.Empty(t, first)
}

func TestManager_OpenValidation(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	assert.ErrorIs(t, m.Open(context.Background(), Mode("bogus"), func(Result) {}), ErrUnknownMode)
	assert.ErrorIs(t, m.Open(context.Background(), ModeSetVerify, func(Result) {}), ErrUnknownMode)
	assert.ErrorIs(t, m.Open(context.Background(), ModeParental, nil), ErrNilReply)
}

func TestManager_ParentalMatch(t *testing.T) {
	m, poster, _, _ := newTestManager(t)

	var results []Result
	require.NoError(t, m.Open(context.Background(), ModeParental, collectResults(&results)))
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "1234"))

	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
	assert.NoError(t, results[0].Err)
	assert.False(t, m.Active())
	assert.Equal(t, "close", poster.last()["pincodePromptAction"])
}

func TestManager_ParentalMismatchRetries(t *testing.T) {
	m, poster, _, _ := newTestManager(t)

	var results []Result
	require.NoError(t, m.Open(context.Background(), ModeParental, collectResults(&results)))
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "9999"))

	assert.Empty(t, results)
	assert.True(t, m.Active())
	assert.Equal(t, "open", poster.last()["pincodePromptAction"])
	assert.Equal(t, true, poster.last()["retry"])

	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "1234"))
	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
}

func TestManager_NonRelayCloseAlwaysFails(t *testing.T) {
	m, _, svc, _ := newTestManager(t)

	var results []Result
	require.NoError(t, m.Open(context.Background(), ModeSetMatch, collectResults(&results)))
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "1234"))

	// Mid set workflow, a plain close still reports no match.
	require.NoError(t, m.Close(context.Background(), "dismissed", ""))
	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
	assert.NoError(t, results[0].Err)
	assert.False(t, m.Active())
	assert.Zero(t, svc.sets)
}

func TestManager_SetWorkflowCommits(t *testing.T) {
	m, poster, svc, sys := newTestManager(t)
	sys.SetCountry("FRA")

	var results []Result
	require.NoError(t, m.Open(context.Background(), ModeSetMatch, collectResults(&results)))

	// Current PIN confirmed, moves to new PIN entry.
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "1234"))
	assert.Equal(t, "set_newpin", poster.last()["promptType"])

	// Denylisted code for FRA retries new PIN entry.
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "0000"))
	assert.Equal(t, "set_newpin", poster.last()["promptType"])
	assert.Equal(t, true, poster.last()["retry"])

	// Acceptable code moves to verification.
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "5678"))
	assert.Equal(t, "set_verify", poster.last()["promptType"])

	// Mismatched verification retries without committing.
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "8765"))
	assert.Equal(t, "set_verify", poster.last()["promptType"])
	assert.Equal(t, true, poster.last()["retry"])
	assert.Zero(t, svc.sets)

	// Matching verification commits the PIN value and the consumed flag.
	require.NoError(t, m.Close(context.Background(), CloseTypeRelay, "5678"))
	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
	assert.False(t, m.Active())
	assert.Equal(t, 2, svc.sets)
	assert.Equal(t, "5678", sys.SystemPin())

	values, err := svc.Get(context.Background(), settings.KeySystemPin, settings.KeyInitialPinCode)
	require.NoError(t, err)
	assert.Equal(t, "5678", values[settings.KeySystemPin])
	assert.Equal(t, "false", values[settings.KeyInitialPinCode])
}

func TestManager_CancelFailsSession(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	var results []Result
	require.NoError(t, m.Open(context.Background(), ModeParental, collectResults(&results)))

	m.Cancel(context.Background())
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrPromptUnavailable)
	assert.False(t, m.Active())

	// No session left to cancel or close.
	m.Cancel(context.Background())
	assert.ErrorIs(t, m.Close(context.Background(), CloseTypeRelay, "1234"), ErrPromptUnavailable)
}
