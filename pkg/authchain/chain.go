package authchain

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifyd/pkg/logger"
)

// Decision is the reply of the external authorization service for one URI.
type Decision struct {
	ReturnValue bool `json:"returnValue"`
	Allowed     bool `json:"allowed"`
}

// Authorizer is the external is-call-allowed RPC. Exactly one check is in
// flight at a time for a given chain run.
type Authorizer interface {
	CheckCallAllowed(ctx context.Context, uri, requester string) (Decision, error)
}

// Chain verifies every action URI attached to an alert before the alert may
// be shown. Checks run strictly sequentially and short-circuit on the first
// failure; no URI after a rejection is ever checked.
type Chain struct {
	authorizer Authorizer
	logger     *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger for the Chain.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// New creates an authorization chain backed by the given authorizer.
func New(authorizer Authorizer, opts ...Option) *Chain {
	c := &Chain{
		authorizer: authorizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify checks each URI on behalf of the requester. The list is treated as a
// stack: the most recently appended URI is popped and checked first. An empty
// list verifies trivially.
//
// Failure modes, in order of detection per URI:
//   - the RPC itself fails to dispatch: TransportError wrapping the cause
//   - the service declines the call (returnValue=false): ErrCallFailed
//   - the service answers allowed=false: NotAllowedError naming the URI
func (c *Chain) Verify(ctx context.Context, requester string, uris []string) error {
	// Work on a copy so the caller's slice survives the pops.
	stack := make([]string, len(uris))
	copy(stack, uris)

	for len(stack) > 0 {
		uri := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		decision, err := c.authorizer.CheckCallAllowed(ctx, uri, requester)
		if err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "authorization check did not dispatch",
				slog.String("uri", uri),
				slog.String("requester", requester),
				logger.Error(err),
			)
			return &TransportError{URI: uri, Err: err}
		}
		if !decision.ReturnValue {
			return ErrCallFailed
		}
		if !decision.Allowed {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "requester not allowed to call uri",
				slog.String("uri", uri),
				slog.String("requester", requester),
			)
			return &NotAllowedError{URI: uri}
		}
	}
	return nil
}
