package history

import (
	"context"
	"time"
)

// Storage persists notification records.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Save persists a record, defaulting a missing schedule to MaxTimestamp.
	Save(ctx context.Context, rec Record) error

	// Delete removes all records matching the filter and returns how many
	// were removed.
	Delete(ctx context.Context, f Filter) (int64, error)

	// Find returns all records matching the filter.
	Find(ctx context.Context, f Filter) ([]Record, error)

	// PurgeExpired removes records whose expiry lies before the given time
	// and returns how many were removed.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
