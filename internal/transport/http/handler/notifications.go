package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-listing-notify/internal/application/device"
	"github.com/go-listing-notify/internal/application/notification"
	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/transport/http/middleware"
)

// NotificationHandler serves the caller's own notifications. The recipient is
// always taken from the verified claims, never from the request.
type NotificationHandler struct {
	svc      notification.Service
	devices  device.Service
	pageSize int
}

func NewNotificationHandler(svc notification.Service, devices device.Service, pageSize int) *NotificationHandler {
	return &NotificationHandler{svc: svc, devices: devices, pageSize: pageSize}
}

func recipientFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	page, pageSize := parsePagination(r, h.pageSize)
	p, err := h.svc.List(r.Context(), recipientID, page, pageSize)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), recipientID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UnreadCountEnvelope{UnreadCount: n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkRead(r.Context(), recipientID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllRead(r.Context(), recipientID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ModifiedEnvelope{ModifiedCount: n})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), recipientID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification deleted"})
}

func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	n, err := h.svc.DeleteAll(r.Context(), recipientID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedEnvelope{DeletedCount: n})
}

func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	var req domain.RegisterTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.devices.RegisterToken(r.Context(), recipientID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
