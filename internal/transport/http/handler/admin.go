package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-listing-notify/internal/application/notification"
	"github.com/go-listing-notify/internal/application/submission"
	"github.com/go-listing-notify/internal/domain"
)

// AdminHandler exposes operator endpoints: direct sends and reading any recipient's inbox.
type AdminHandler struct {
	sender   submission.Service
	notifs   notification.Service
	pageSize int
}

func NewAdminHandler(sender submission.Service, notifs notification.Service, pageSize int) *AdminHandler {
	return &AdminHandler{sender: sender, notifs: notifs, pageSize: pageSize}
}

func (h *AdminHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.DirectSendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.sender.SendDirect(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) ListForRecipient(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r, h.pageSize)
	p, err := h.notifs.List(r.Context(), chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
