// Package httpapi exposes the visitor account service over HTTP. Routes are
// served by chi and every API response uses the {success, message, data}
// envelope.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every /api/v1 response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already out, an encode error has nowhere to go
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func writeCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}
