package authchain

import (
	"errors"
	"fmt"
)

// ErrCallFailed indicates the authorization service explicitly declined the
// check call (returnValue=false).
var ErrCallFailed = errors.New("Call failed")

// NotAllowedError indicates the requester is not permitted to call the URI.
type NotAllowedError struct {
	URI string
}

func (e *NotAllowedError) Error() string {
	return "Not allowed to call method specified in the uri: " + e.URI
}

// TransportError indicates the check RPC itself failed to dispatch.
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Call failed - %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotAllowedError reports whether err is a NotAllowedError.
func IsNotAllowedError(err error) bool {
	var e *NotAllowedError
	return errors.As(err, &e)
}

// IsTransportError reports whether err is a TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}
