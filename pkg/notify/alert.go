package notify

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifyd/pkg/bus"
	"github.com/dmitrymomot/notifyd/pkg/capability"
)

var alertTypes = map[string]struct{}{
	"confirm": {},
	"warning": {},
	"battery": {},
}

var buttonTypes = map[string]struct{}{
	"ok":     {},
	"cancel": {},
}

// CreateAlert accepts a modal alert. Every action URI the request carries is
// confirmed callable by the requesting principal before the alert may be
// shown; the first denial fails the whole request and nothing is posted.
func (s *Service) CreateAlert(ctx context.Context, p Principal, req CreateAlertRequest) (*CreateAlertResponse, error) {
	if !p.Privileged {
		return nil, &PermissionError{Text: "Caller does not have permission to create alerts"}
	}
	sourceID, err := s.resolveSource(p, req.SourceID)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errValidation("Message is required")
	}
	alertType := req.Type
	if alertType == "" {
		alertType = "confirm"
	}
	if _, ok := alertTypes[alertType]; !ok {
		return nil, errValidation("Invalid alert type: %s", req.Type)
	}

	uris, err := collectActionURIs(req)
	if err != nil {
		return nil, err
	}

	if err := s.checkBlocked(capability.KindAlert, req.IgnoreDisable); err != nil {
		return nil, err
	}

	if len(uris) > 0 {
		if err := s.chain.Verify(ctx, p.ID, uris); err != nil {
			return nil, err
		}
	}

	ts := s.timestamp()
	alertID := makeID(sourceID, ts)

	payload := map[string]any{
		"sourceId":  sourceID,
		"message":   scrub(req.Message),
		"timestamp": ts,
		"alertId":   alertID,
		"type":      alertType,
		"modal":     req.Modal,
		"displayId": req.DisplayID,
	}
	if req.Title != "" {
		payload["title"] = scrub(req.Title)
	}
	if len(req.Buttons) > 0 {
		payload["buttons"] = req.Buttons
	}
	if req.OnClose != nil {
		payload["onclose"] = req.OnClose
	}

	s.postOrQueueAlert(ctx, payload)
	return &CreateAlertResponse{AlertID: alertID}, nil
}

// collectActionURIs validates the alert's actions and gathers their URIs in
// discovery order: the on-close action first, then each button.
func collectActionURIs(req CreateAlertRequest) ([]string, error) {
	var uris []string

	if req.OnClose != nil && req.OnClose.URI != "" {
		if !validURI(req.OnClose.URI) {
			return nil, errValidation("Invalid onclose uri: %s", req.OnClose.URI)
		}
		uris = append(uris, req.OnClose.URI)
	}

	for _, b := range req.Buttons {
		if b.Label == "" {
			return nil, errValidation("Button label is required")
		}
		if b.Type != "" {
			if _, ok := buttonTypes[b.Type]; !ok {
				return nil, errValidation("Invalid button type: %s", b.Type)
			}
		}
		if b.OnClick == "" {
			continue
		}
		if !validURI(b.OnClick) {
			return nil, errValidation("Invalid onclick uri: %s", b.OnClick)
		}
		uris = append(uris, b.OnClick)
	}
	return uris, nil
}

// CloseAlert dismisses an alert by id.
func (s *Service) CloseAlert(ctx context.Context, p Principal, req CloseAlertRequest) error {
	if req.AlertID == "" {
		return errValidation("Alert id is required")
	}

	s.postOrQueueAlert(ctx, map[string]any{
		"alertAction": "close",
		"alertId":     req.AlertID,
		"timestamp":   s.timestamp(),
	})
	return nil
}

// CloseAllAlerts dismisses every open alert on a display.
func (s *Service) CloseAllAlerts(ctx context.Context, p Principal, req CloseAllAlertsRequest) error {
	if !p.Privileged {
		return &PermissionError{Text: "Caller does not have permission to close alerts"}
	}
	s.postOrQueueAlert(ctx, map[string]any{
		"alertAction": "closeAll",
		"displayId":   req.DisplayID,
		"timestamp":   s.timestamp(),
	})
	return nil
}

func (s *Service) postOrQueueAlert(ctx context.Context, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gate.Available(capability.KindAlert, capability.FlagUI) {
		s.alerts.Enqueue(payload)
		return
	}
	if err := s.bus.Post(ctx, bus.ChannelAlert, payload); err != nil {
		s.logger.Error("alert post failed", slog.Any("error", err))
	}
}

// CreateInputAlert shows an input dialog. Input alerts are immediate: the
// input surface must be available, there is no pending queue for them.
func (s *Service) CreateInputAlert(ctx context.Context, p Principal, req CreateInputAlertRequest) (*CreateInputAlertResponse, error) {
	if !p.Privileged {
		return nil, &PermissionError{Text: "Caller does not have permission to create input alerts"}
	}
	sourceID, err := s.resolveSource(p, req.SourceID)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errValidation("Message is required")
	}
	if !s.gate.Available(capability.KindInput, capability.FlagAll) {
		return nil, &BlockedError{Reason: s.gate.Reason(capability.KindInput)}
	}

	ts := s.timestamp()
	inputID := makeID(sourceID, ts)

	payload := map[string]any{
		"sourceId":  sourceID,
		"message":   scrub(req.Message),
		"timestamp": ts,
		"inputId":   inputID,
		"displayId": req.DisplayID,
	}
	if req.Title != "" {
		payload["title"] = scrub(req.Title)
	}
	if req.InputType != "" {
		payload["inputType"] = req.InputType
	}

	if err := s.bus.Post(ctx, bus.ChannelInput, payload); err != nil {
		s.logger.Error("input alert post failed", slog.Any("error", err))
	}
	return &CreateInputAlertResponse{InputID: inputID}, nil
}

// CloseInputAlert dismisses an input dialog by id.
func (s *Service) CloseInputAlert(ctx context.Context, p Principal, req CloseInputAlertRequest) error {
	if req.InputID == "" {
		return errValidation("Input id is required")
	}
	if !s.gate.Available(capability.KindInput, capability.FlagUI) {
		return &BlockedError{Reason: s.gate.Reason(capability.KindInput)}
	}

	if err := s.bus.Post(ctx, bus.ChannelInput, map[string]any{
		"inputAction": "close",
		"inputId":     req.InputID,
		"timestamp":   s.timestamp(),
	}); err != nil {
		s.logger.Error("input alert close post failed", slog.Any("error", err))
	}
	return nil
}
