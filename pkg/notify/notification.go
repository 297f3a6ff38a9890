package notify

import (
	"context"

	"github.com/dmitrymomot/notifyd/pkg/bus"
	"github.com/dmitrymomot/notifyd/pkg/history"
)

// CreateNotification accepts a notification-center entry. The record is
// persisted when the entry is dispatched, so queued notifications land in
// history in delivery order.
func (s *Service) CreateNotification(ctx context.Context, p Principal, req CreateNotificationRequest) (*CreateNotificationResponse, error) {
	sourceID, err := s.resolveSource(p, req.SourceID)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errValidation("Message is required")
	}
	schedule, err := s.resolveSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	ts := s.timestamp()
	notiID := makeID(sourceID, ts)

	payload := map[string]any{
		"sourceId":      sourceID,
		"message":       scrub(req.Message),
		"timestamp":     ts,
		"notiId":        notiID,
		"schedule":      schedule,
		"isUnDeletable": req.IsUnDeletable,
		"isSysReq":      req.IsSysReq,
		"readStatus":    false,
		"displayId":     req.DisplayID,
	}
	if req.Title != "" {
		payload["title"] = scrub(req.Title)
	}
	if req.IconURL != "" {
		payload["iconUrl"] = req.IconURL
	}
	if req.OnClick != nil {
		payload["onclick"] = req.OnClick
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := notiEntry{payload: payload}
	if !s.notiReady {
		s.notis.Enqueue(entry)
		return &CreateNotificationResponse{NotiID: notiID}, nil
	}
	if err := s.dispatchNoti(ctx, entry); err != nil {
		return nil, err
	}
	return &CreateNotificationResponse{NotiID: notiID}, nil
}

// RemoveNotification deletes notifications by id. While the notification
// center is detached the removal is queued and replayed on reattach.
func (s *Service) RemoveNotification(ctx context.Context, p Principal, req RemoveNotificationRequest) error {
	if len(req.NotiIDs) == 0 {
		return errValidation("Notification id is required")
	}

	payload := map[string]any{
		"removeNotiId": req.NotiIDs,
		"timestamp":    s.timestamp(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.notiReady {
		s.notis.Enqueue(notiEntry{payload: payload, ids: req.NotiIDs, removal: true})
		return nil
	}

	removed, err := s.storage.Delete(ctx, history.Filter{IDs: req.NotiIDs})
	if err != nil {
		return err
	}
	if removed == 0 {
		return errValidation("Notification id does not exist")
	}
	return s.bus.Post(ctx, bus.ChannelNotification, payload)
}

// RemoveAllNotifications clears the deletable notifications of one display.
func (s *Service) RemoveAllNotifications(ctx context.Context, p Principal, req RemoveAllNotificationsRequest) error {
	payload := map[string]any{
		"removeAllNotiId": true,
		"displayId":       req.DisplayID,
		"timestamp":       s.timestamp(),
	}
	entry := notiEntry{payload: payload, displayID: req.DisplayID, removeAll: true}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.notiReady {
		s.notis.Enqueue(entry)
		return nil
	}
	return s.dispatchNoti(ctx, entry)
}

// GetNotificationInfo returns the persisted notifications of one source, or
// all of them for privileged callers.
func (s *Service) GetNotificationInfo(ctx context.Context, p Principal, req GetNotificationInfoRequest) (*GetNotificationInfoResponse, error) {
	if req.All && !p.Privileged {
		return nil, &PermissionError{Text: "Caller does not have permission to read all notifications"}
	}
	if !req.All && req.SourceID == "" {
		req.SourceID = p.ID
	}
	if !req.All && req.SourceID == "" {
		return nil, errValidation("Source id is required")
	}

	filter := history.Filter{}
	if !req.All {
		filter.SourceID = req.SourceID
	}
	recs, err := s.storage.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []history.Record{}
	}
	return &GetNotificationInfoResponse{Notifications: recs}, nil
}
