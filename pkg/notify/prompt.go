package notify

import (
	"context"

	"github.com/dmitrymomot/notifyd/pkg/capability"
	"github.com/dmitrymomot/notifyd/pkg/pincode"
)

// CreatePincodePrompt opens a PIN prompt session and returns a channel that
// yields the terminal outcome: a match verdict, or an error when the prompt
// surface disappears mid-session. At most one session is live at a time; a
// concurrent open fails with pincode.ErrPromptActive and leaves the first
// session untouched.
func (s *Service) CreatePincodePrompt(ctx context.Context, p Principal, req CreatePincodePromptRequest) (<-chan pincode.Result, error) {
	if err := s.checkBlocked(capability.KindPinPrompt, req.IgnoreDisable); err != nil {
		return nil, err
	}
	if !s.gate.Available(capability.KindPinPrompt, capability.FlagUI) {
		return nil, pincode.ErrPromptUnavailable
	}

	ch := make(chan pincode.Result, 1)
	if err := s.prompts.Open(ctx, pincode.Mode(req.PromptType), func(r pincode.Result) {
		ch <- r
	}); err != nil {
		return nil, err
	}
	return ch, nil
}

// ClosePincodePrompt handles a close call from the prompt UI. A relay close
// advances the active workflow with the submitted code; any other close type
// ends the session with matched=false.
func (s *Service) ClosePincodePrompt(ctx context.Context, p Principal, req ClosePincodePromptRequest) error {
	return s.prompts.Close(ctx, req.CloseType, req.Pincode)
}
