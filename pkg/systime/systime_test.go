package systime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_SyncFiresOnFlipOnly(t *testing.T) {
	s := New()

	var flips []bool
	s.OnSync(func(synced bool) { flips = append(flips, synced) })

	s.SetSynced(true, "ntp", 1700000000)
	s.SetSynced(true, "broadcast", 1700000100)
	assert.Equal(t, []bool{true}, flips)
	assert.Equal(t, "broadcast", s.TimeSource())

	s.SetSynced(false, "ntp", 0)
	assert.Equal(t, []bool{true, false}, flips)
}

func TestSource_UntrustedSourcesStayUnsynced(t *testing.T) {
	s := New()

	s.SetSynced(true, "factory", 1700000000)
	assert.False(t, s.Synced())

	s.SetSynced(true, "", 1700000000)
	assert.False(t, s.Synced())

	s.SetSynced(true, "ntp", 1700000000)
	assert.True(t, s.Synced())
}

func TestSource_BootNotifications(t *testing.T) {
	s := New()

	var kinds []string
	s.OnBoot(func(kind string) { kinds = append(kinds, kind) })

	s.NotifyBoot("warm")
	s.NotifyBoot("cold")
	assert.Equal(t, []string{"warm", "cold"}, kinds)
}
