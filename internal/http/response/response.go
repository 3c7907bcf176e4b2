// Package response renders the API's JSON envelope. Every endpoint
// returns {"success": bool, "data": ...} on success and
// {"success": false, "error": {...}} on failure so clients can branch
// on a single shape.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	write(w, r, status, Envelope{Success: true, Data: data})
}

// Error writes a failure envelope. code is a stable machine-readable
// identifier; message is for humans.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	write(w, r, status, Envelope{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details},
	})
}

func write(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response body", "error", err)
	}
}
