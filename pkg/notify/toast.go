package notify

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifyd/pkg/bus"
	"github.com/dmitrymomot/notifyd/pkg/capability"
	"github.com/dmitrymomot/notifyd/pkg/history"
)

// CreateToast accepts a toast for display. When the toast surface has no
// subscriber yet the payload is parked in the pending queue and the caller
// still receives success with the generated id; a silenced or stale toast is
// acknowledged but never shown.
func (s *Service) CreateToast(ctx context.Context, p Principal, req CreateToastRequest) (*CreateToastResponse, error) {
	sourceID, err := s.resolveSource(p, req.SourceID)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errValidation("Message is required")
	}
	if err := s.checkBlocked(capability.KindToast, req.IgnoreDisable); err != nil {
		return nil, err
	}
	schedule, err := s.resolveSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	ts := s.timestamp()
	toastID := makeID(sourceID, ts)

	payload := map[string]any{
		"sourceId":  sourceID,
		"message":   scrub(req.Message),
		"timestamp": ts,
		"toastId":   toastID,
		"schedule":  schedule,
		"displayId": req.DisplayID,
	}
	if req.Title != "" {
		payload["title"] = scrub(req.Title)
	}
	if req.IconURL != "" {
		payload["iconUrl"] = req.IconURL
	}
	if req.NoAction {
		payload["noaction"] = true
	} else if req.OnClick != nil {
		payload["onclick"] = req.OnClick
	}

	if req.Persistent {
		payload["persistent"] = true
		if err := s.saveRecord(ctx, payload); err != nil {
			return nil, err
		}
	}

	if req.Stale || s.gate.Silenced() {
		return &CreateToastResponse{ToastID: toastID}, nil
	}

	s.postOrQueueToast(ctx, payload)
	return &CreateToastResponse{ToastID: toastID}, nil
}

// CloseToast dismisses a toast by id, removing any persisted copy and
// sending the close through the same gate and queue path as creation.
func (s *Service) CloseToast(ctx context.Context, p Principal, req CloseToastRequest) error {
	if req.ToastID == "" {
		return errValidation("Toast id is required")
	}

	if _, err := s.storage.Delete(ctx, history.Filter{IDs: []string{req.ToastID}}); err != nil {
		s.logger.Error("persisted toast removal failed",
			slog.String("toastId", req.ToastID), slog.Any("error", err))
	}

	s.postOrQueueToast(ctx, map[string]any{
		"toastAction": "close",
		"toastId":     req.ToastID,
		"timestamp":   s.timestamp(),
	})
	return nil
}

func (s *Service) postOrQueueToast(ctx context.Context, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gate.Available(capability.KindToast, capability.FlagUI) {
		s.toasts.Enqueue(payload)
		return
	}
	if err := s.bus.Post(ctx, bus.ChannelToast, payload); err != nil {
		s.logger.Error("toast post failed", slog.Any("error", err))
	}
}
