package httpserver

import "errors"

var (
	// ErrStart wraps failures to start or run the listener.
	ErrStart = errors.New("httpserver: start failed")

	// ErrShutdown wraps graceful shutdown failures.
	ErrShutdown = errors.New("httpserver: shutdown failed")
)
