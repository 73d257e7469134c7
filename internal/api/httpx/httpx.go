// Package httpx holds the response helpers shared by every handler: one JSON
// envelope for errors, one writer for payloads, one redirect for the places
// where missing auth is control flow rather than a failure.
package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is the uniform error envelope. Code is a stable machine-readable
// tag; Details carries field-level validation errors when present.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details any) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// Redirect sends the browser elsewhere with 303 See Other, so a redirected
// POST (logout, an expired-session form submit) is retried as a GET.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
