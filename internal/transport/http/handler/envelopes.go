package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// UnreadCountEnvelope wraps GET /notifications/unread-count.
type UnreadCountEnvelope struct {
	UnreadCount int `json:"unreadCount"`
}

// ModifiedEnvelope wraps PATCH /notifications/read-all.
type ModifiedEnvelope struct {
	ModifiedCount int `json:"modifiedCount"`
}

// DeletedEnvelope wraps DELETE /notifications/delete-all.
type DeletedEnvelope struct {
	DeletedCount int `json:"deletedCount"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// parsePagination reads page and limit (or pageSize) from the query string.
// Missing or malformed values fall back to page 1 and def; the service clamps the rest.
func parsePagination(r *http.Request, def int) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	raw := q.Get("limit")
	if raw == "" {
		raw = q.Get("pageSize")
	}
	pageSize, _ = strconv.Atoi(raw)
	if pageSize < 1 {
		pageSize = def
	}
	return page, pageSize
}
