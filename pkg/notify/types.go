package notify

import "github.com/dmitrymomot/notifyd/pkg/history"

// Principal identifies the calling application or service.
type Principal struct {
	// ID is the caller's application id, e.g. "com.example.app".
	ID string

	// Privileged marks platform callers that may spoof source ids and use
	// restricted operations.
	Privileged bool
}

// Button is a clickable alert action.
type Button struct {
	Label   string         `json:"label"`
	Type    string         `json:"type,omitempty"` // "ok" or "cancel"
	OnClick string         `json:"onclick,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Focus   bool           `json:"focus,omitempty"`
}

// Action is an on-close or on-click callback target.
type Action struct {
	URI    string         `json:"uri,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

type CreateToastRequest struct {
	SourceID      string            `json:"sourceId,omitempty"`
	Message       string            `json:"message"`
	Title         string            `json:"title,omitempty"`
	IconURL       string            `json:"iconUrl,omitempty"`
	OnClick       *Action           `json:"onclick,omitempty"`
	NoAction      bool              `json:"noaction,omitempty"`
	Stale         bool              `json:"stale,omitempty"`
	Persistent    bool              `json:"persistent,omitempty"`
	IgnoreDisable bool              `json:"ignoreDisable,omitempty"`
	Schedule      *history.Schedule `json:"schedule,omitempty"`
	DisplayID     int               `json:"displayId,omitempty"`
}

type CreateToastResponse struct {
	ToastID string `json:"toastId"`
}

type CreateAlertRequest struct {
	SourceID      string   `json:"sourceId,omitempty"`
	Title         string   `json:"title,omitempty"`
	Message       string   `json:"message"`
	Type          string   `json:"type,omitempty"` // "confirm", "warning" or "battery"
	Modal         bool     `json:"modal,omitempty"`
	Buttons       []Button `json:"buttons,omitempty"`
	OnClose       *Action  `json:"onclose,omitempty"`
	IgnoreDisable bool     `json:"ignoreDisable,omitempty"`
	DisplayID     int      `json:"displayId,omitempty"`
}

type CreateAlertResponse struct {
	AlertID string `json:"alertId"`
}

type CloseToastRequest struct {
	ToastID string `json:"toastId"`
}

type CloseAlertRequest struct {
	AlertID string `json:"alertId"`
}

type CloseAllAlertsRequest struct {
	DisplayID int `json:"displayId,omitempty"`
}

type CreateInputAlertRequest struct {
	SourceID  string `json:"sourceId,omitempty"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	InputType string `json:"inputType,omitempty"`
	DisplayID int    `json:"displayId,omitempty"`
}

type CreateInputAlertResponse struct {
	InputID string `json:"inputId"`
}

type CloseInputAlertRequest struct {
	InputID string `json:"inputId"`
}

type CreateNotificationRequest struct {
	SourceID      string            `json:"sourceId,omitempty"`
	Message       string            `json:"message"`
	Title         string            `json:"title,omitempty"`
	IconURL       string            `json:"iconUrl,omitempty"`
	OnClick       *Action           `json:"onclick,omitempty"`
	IsUnDeletable bool              `json:"isUnDeletable,omitempty"`
	IsSysReq      bool              `json:"isSysReq,omitempty"`
	Schedule      *history.Schedule `json:"schedule,omitempty"`
	DisplayID     int               `json:"displayId,omitempty"`
}

type CreateNotificationResponse struct {
	NotiID string `json:"notiId"`
}

type RemoveNotificationRequest struct {
	NotiIDs []string `json:"removeNotiId"`
}

type RemoveAllNotificationsRequest struct {
	DisplayID int `json:"displayId,omitempty"`
}

type GetNotificationInfoRequest struct {
	SourceID string `json:"sourceId,omitempty"`
	All      bool   `json:"all,omitempty"`
}

type GetNotificationInfoResponse struct {
	Notifications []history.Record `json:"notifications"`
}

type DisableRequest struct {
	Reason string `json:"reason,omitempty"`
}

type CreatePincodePromptRequest struct {
	PromptType    string `json:"promptType"`
	IgnoreDisable bool   `json:"ignoreDisable,omitempty"`
}

type ClosePincodePromptRequest struct {
	CloseType string `json:"closeType"`
	Pincode   string `json:"pincode,omitempty"`
}

type PincodePromptResult struct {
	Matched bool `json:"matched"`
}
