package pincode

import "errors"

var (
	// ErrPromptActive is returned when a prompt session already exists.
	// The error text is part of the caller-facing contract.
	ErrPromptActive = errors.New("Pincode prompt is active")

	// ErrPromptUnavailable carries the failure text delivered when the
	// prompt surface goes away mid-session or a close arrives without one.
	ErrPromptUnavailable = errors.New("Pincode UI is not available")

	// ErrUnknownMode is returned for prompt types outside the known set.
	ErrUnknownMode = errors.New("pincode: unknown prompt type")

	// ErrNilReply is returned when Open is called without a continuation.
	ErrNilReply = errors.New("pincode: nil reply continuation")
)
