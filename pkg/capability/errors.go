package capability

import "errors"

var (
	// ErrUnknownKind is returned when a kind does not name a tracked capability.
	ErrUnknownKind = errors.New("capability: unknown kind")

	// ErrNilSubscriber is returned when a nil transition callback is registered.
	ErrNilSubscriber = errors.New("capability: nil subscriber")
)
