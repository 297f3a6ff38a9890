package notify

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or missing request field. The text is
// returned to the caller verbatim.
type ValidationError struct {
	Text string
}

func (e *ValidationError) Error() string {
	return e.Text
}

// PermissionError reports a caller lacking the right to perform an
// operation.
type PermissionError struct {
	Text string
}

func (e *PermissionError) Error() string {
	return e.Text
}

// BlockedError reports an administratively blocked capability. Reason is the
// gate's rendered block reason.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("UI is blocked %s", e.Reason)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsBlockedError reports whether err is a BlockedError.
func IsBlockedError(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}

func errValidation(format string, args ...any) error {
	return &ValidationError{Text: fmt.Sprintf(format, args...)}
}
