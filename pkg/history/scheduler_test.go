package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStorage struct {
	Storage
	mu     sync.Mutex
	purges int
}

func (c *countingStorage) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purges++
	return 0, nil
}

func TestScheduler_PurgesOnceOnSync(t *testing.T) {
	st := &countingStorage{Storage: NewMemory()}
	s := NewScheduler(st)

	s.HandleSync(false)
	assert.Equal(t, 0, st.purges)
	assert.False(t, s.Purged())

	s.HandleSync(true)
	s.HandleSync(true)
	s.HandleBoot(BootWarm, true)

	assert.Equal(t, 1, st.purges)
	assert.True(t, s.Purged())
}

func TestScheduler_WarmBootPath(t *testing.T) {
	st := &countingStorage{Storage: NewMemory()}
	s := NewScheduler(st)

	s.HandleBoot("cold", true)
	s.HandleBoot(BootWarm, false)
	assert.Equal(t, 0, st.purges)

	s.HandleBoot(BootWarm, true)
	assert.Equal(t, 1, st.purges)

	s.HandleSync(true)
	assert.Equal(t, 1, st.purges)
}

func TestScheduler_RemovesExpiredRecords(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	require.NoError(t, m.Save(context.Background(), Record{
		NotiID:   "old",
		Schedule: &Schedule{Expire: now.Add(-time.Minute).Unix()},
	}))
	require.NoError(t, m.Save(context.Background(), Record{NotiID: "fresh"}))

	s := NewScheduler(m, WithSchedulerClock(func() time.Time { return now }))
	s.HandleSync(true)

	recs, err := m.Find(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "fresh", recs[0].ID())
}
