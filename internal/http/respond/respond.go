package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the standard API response wrapper used across handlers.
// ServerError marks opaque 500-class failures whose detail stays in the logs.
type Envelope struct {
	Data        any    `json:"data,omitempty"`
	Message     string `json:"message,omitempty"`
	Success     bool   `json:"success"`
	ServerError bool   `json:"serverError,omitempty"`
}

// JSON writes a success response carrying data.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Data: data, Success: true})
}

// Message writes a success response with a human-readable confirmation.
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Message: message, Success: true})
}

// Error writes a client-facing error with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Message: message})
}

// ServerError writes an opaque 500 response. The cause must already have been
// logged by the caller.
func ServerError(w http.ResponseWriter) {
	write(w, http.StatusInternalServerError, Envelope{ServerError: true})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
