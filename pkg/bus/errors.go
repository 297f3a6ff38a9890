package bus

import "errors"

var (
	// ErrClosed is returned when operating on a closed bus.
	ErrClosed = errors.New("bus: closed")

	// ErrUnknownChannel is returned for channels outside the known set.
	ErrUnknownChannel = errors.New("bus: unknown channel")
)
