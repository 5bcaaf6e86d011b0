package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody has the same JSON shape as the handlers' error envelope, so a
// request stopped here reads the same as one a handler rejected.
type errorBody struct {
	Error string `json:"error"`
}

// reject ends the request with status and a JSON error body. A 401 also
// names the bearer scheme the API expects.
func reject(w http.ResponseWriter, status int, msg string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		h.Set("WWW-Authenticate", `Bearer realm="listing-notify"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
