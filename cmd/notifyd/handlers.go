package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifyd/pkg/authchain"
	"github.com/dmitrymomot/notifyd/pkg/bus"
	"github.com/dmitrymomot/notifyd/pkg/logger"
	"github.com/dmitrymomot/notifyd/pkg/notify"
	"github.com/dmitrymomot/notifyd/pkg/pincode"
	"github.com/dmitrymomot/notifyd/pkg/systime"
)

// principal derives the caller identity from the trusted gateway headers.
func principal(r *http.Request) notify.Principal {
	return notify.Principal{
		ID:         r.Header.Get("X-Client-Id"),
		Privileged: r.Header.Get("X-Client-Privileged") == "true",
	}
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeOK(w http.ResponseWriter, extra map[string]any) {
	payload := map[string]any{"returnValue": true}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case notify.IsValidationError(err):
		status = http.StatusBadRequest
	case notify.IsPermissionError(err):
		status = http.StatusForbidden
	case notify.IsBlockedError(err):
		status = http.StatusServiceUnavailable
	case authchain.IsNotAllowedError(err), err == authchain.ErrCallFailed:
		status = http.StatusForbidden
	case err == pincode.ErrPromptActive:
		status = http.StatusConflict
	case err == pincode.ErrPromptUnavailable, err == pincode.ErrUnknownMode:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{
		"returnValue": false,
		"errorText":   err.Error(),
	})
}

func decode[T any](r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, false
	}
	return v, true
}

func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"returnValue": false,
		"errorText":   "Malformed JSON request body",
	})
}

func newRouter(svc *notify.Service, b bus.Bus, clock *systime.Source, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, nil)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/toast", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CreateToastRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			resp, err := svc.CreateToast(req.Context(), principal(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, map[string]any{"toastId": resp.ToastID})
		})
		r.Post("/toast/close", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CloseToastRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.CloseToast(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})
		r.Post("/toast/enable", func(w http.ResponseWriter, req *http.Request) {
			if err := svc.EnableToast(principal(req)); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})
		r.Post("/toast/disable", func(w http.ResponseWriter, req *http.Request) {
			if err := svc.DisableToast(principal(req)); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})

		r.Post("/alert", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CreateAlertRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			resp, err := svc.CreateAlert(req.Context(), principal(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, map[string]any{"alertId": resp.AlertID})
		})
		r.Post("/alert/close", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CloseAlertRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.CloseAlert(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})
		r.Post("/alert/closeAll", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CloseAllAlertsRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.CloseAllAlerts(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})

		r.Post("/input", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CreateInputAlertRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			resp, err := svc.CreateInputAlert(req.Context(), principal(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, map[string]any{"inputId": resp.InputID})
		})
		r.Post("/input/close", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CloseInputAlertRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.CloseInputAlert(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})

		r.Post("/notification", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CreateNotificationRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			resp, err := svc.CreateNotification(req.Context(), principal(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, map[string]any{"notiId": resp.NotiID})
		})
		r.Post("/notification/remove", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.RemoveNotificationRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.RemoveNotification(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})
		r.Post("/notification/removeAll", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.RemoveAllNotificationsRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.RemoveAllNotifications(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})
		r.Get("/notification", func(w http.ResponseWriter, req *http.Request) {
			body := notify.GetNotificationInfoRequest{
				SourceID: req.URL.Query().Get("sourceId"),
				All:      req.URL.Query().Get("all") == "true",
			}
			resp, err := svc.GetNotificationInfo(req.Context(), principal(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, map[string]any{"notifications": resp.Notifications})
		})

		r.Post("/enable", func(w http.ResponseWriter, req *http.Request) {
			if err := svc.Enable(principal(req)); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})
		r.Post("/disable", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.DisableRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.Disable(principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})

		r.Post("/pincode/open", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.CreatePincodePromptRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			results, err := svc.CreatePincodePrompt(req.Context(), principal(req), body)
			if err != nil {
				writeError(w, err)
				return
			}
			// The reply is held until the prompt workflow finishes.
			select {
			case res := <-results:
				if res.Err != nil {
					writeError(w, res.Err)
					return
				}
				writeOK(w, map[string]any{"matched": res.Matched})
			case <-req.Context().Done():
			}
		})
		r.Post("/pincode/close", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[notify.ClosePincodePromptRequest](req)
			if !ok {
				badRequest(w)
				return
			}
			if err := svc.ClosePincodePrompt(req.Context(), principal(req), body); err != nil {
				writeError(w, err)
				return
			}
			writeOK(w, nil)
		})

		r.Post("/time/sync", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[struct {
				Synced     bool   `json:"synced"`
				TimeSource string `json:"timeSource"`
				UTC        int64  `json:"utc"`
			}](req)
			if !ok {
				badRequest(w)
				return
			}
			clock.SetSynced(body.Synced, body.TimeSource, body.UTC)
			writeOK(w, nil)
		})
		r.Post("/time/boot", func(w http.ResponseWriter, req *http.Request) {
			body, ok := decode[struct {
				Kind string `json:"kind"`
			}](req)
			if !ok {
				badRequest(w)
				return
			}
			clock.NotifyBoot(body.Kind)
			writeOK(w, nil)
		})

		// Display surfaces attach here; the stream staying open is what
		// makes the matching capability UI-available.
		r.Get("/subscribe/{channel}", func(w http.ResponseWriter, req *http.Request) {
			channel := bus.Channel(chi.URLParam(req, "channel"))
			sub, err := b.Subscribe(req.Context(), channel)
			if err != nil {
				writeError(w, err)
				return
			}
			defer sub.Close()

			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			flusher, _ := w.(http.Flusher)
			if flusher != nil {
				flusher.Flush()
			}

			enc := json.NewEncoder(w)
			for {
				select {
				case env, ok := <-sub.Receive():
					if !ok {
						return
					}
					if err := enc.Encode(env); err != nil {
						log.Debug("subscriber write failed",
							logger.Component("subscribe"), logger.Error(err))
						return
					}
					if flusher != nil {
						flusher.Flush()
					}
				case <-req.Context().Done():
					return
				}
			}
		})
	})

	return r
}
