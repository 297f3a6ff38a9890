package history

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Storage implementation for development and testing.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(ctx context.Context, rec Record) error {
	rec.normalize()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) Delete(ctx context.Context, f Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		kept    []Record
		removed int64
	)
	for _, rec := range m.records {
		if f.matches(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return removed, nil
}

func (m *Memory) Find(ctx context.Context, f Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, rec := range m.records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	cutoff := before.Unix()

	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		kept    []Record
		removed int64
	)
	for _, rec := range m.records {
		if rec.Expire() < cutoff {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return removed, nil
}
