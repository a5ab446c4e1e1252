package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body for the users API. Exactly one of
// Message (error path) or Data (success path) is non-null, and StatusCode
// always mirrors the HTTP status.
type Envelope struct {
	StatusCode int     `json:"statusCode"`
	Message    *string `json:"message"`
	Data       any     `json:"data"`
}

// Success builds an envelope carrying data and a null message.
func Success(statusCode int, data any) Envelope {
	return Envelope{StatusCode: statusCode, Data: data}
}

// Error builds an envelope carrying a human-readable message and null data.
func Error(statusCode int, message string) Envelope {
	return Envelope{StatusCode: statusCode, Message: &message}
}

// WriteEnvelope writes an Envelope with its own status code.
func WriteEnvelope(w http.ResponseWriter, e Envelope) {
	WriteJSON(w, e.StatusCode, e)
}

// WriteJSON writes a JSON response with the given status code and sets
// no-store cache headers, as all responses here carry identity data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
