package handler

import (
	"net/http"

	"github.com/go-listing-notify/internal/application/submission"
	"github.com/go-listing-notify/internal/domain"
)

// ListingHandler accepts listing events from the listing service.
type ListingHandler struct {
	svc submission.Service
}

func NewListingHandler(svc submission.Service) *ListingHandler { return &ListingHandler{svc: svc} }

// Submit answers 200 whenever the listing is valid; push and storage failures
// show up as counts and diagnostic fields in the body.
func (h *ListingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var ev domain.ListingEvent
	if !decodeBody(w, r, &ev) {
		return
	}
	res, err := h.svc.Submit(r.Context(), ev)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
