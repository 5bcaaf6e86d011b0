package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-listing-notify/internal/application/device"
)

// DeviceHandler handles device endpoints.
type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler { return &DeviceHandler{svc: svc} }

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	devices, err := h.svc.List(r.Context(), recipientID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := recipientFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), recipientID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "device deleted"})
}
