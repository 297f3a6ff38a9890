package notify

import (
	"github.com/dmitrymomot/notifyd/pkg/capability"
)

// DisableToast suppresses the toast surface on behalf of the system.
func (s *Service) DisableToast(p Principal) error {
	if !p.Privileged {
		return &PermissionError{Text: "Caller does not have permission to disable notifications"}
	}
	return s.gate.Block(capability.KindToast, capability.FlagSystem, "")
}

// EnableToast lifts the system toast block.
func (s *Service) EnableToast(p Principal) error {
	if !p.Privileged {
		return &PermissionError{Text: "Caller does not have permission to enable notifications"}
	}
	return s.gate.Unblock(capability.KindToast, capability.FlagSystem, "")
}

// Disable blocks every notification surface on behalf of an external
// service. The reason, defaulting to the caller's id, is echoed back in
// rejection texts until Enable lifts the block.
func (s *Service) Disable(p Principal, req DisableRequest) error {
	if !p.Privileged {
		return &PermissionError{Text: "Caller does not have permission to disable notifications"}
	}
	reason := req.Reason
	if reason == "" {
		reason = p.ID
	}
	s.gate.BlockAll(capability.FlagExternal, reason)
	return nil
}

// Enable lifts the external block on every notification surface.
func (s *Service) Enable(p Principal) error {
	if !p.Privileged {
		return &PermissionError{Text: "Caller does not have permission to enable notifications"}
	}
	s.gate.UnblockAll(capability.FlagExternal, "")
	return nil
}

// SetToastSilenced toggles the content-level toast opt-out sourced from
// store-mode configuration. Silenced toasts are accepted but never shown.
func (s *Service) SetToastSilenced(on bool) {
	s.gate.SetSilenced(on)
}
