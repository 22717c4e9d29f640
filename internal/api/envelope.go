package api

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Envelope is the uniform JSON wrapper returned by every endpoint: either an
// error member with a machine-readable code, or a plain message.
type Envelope struct {
	Error   *ErrorBody `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ErrorBody carries a stable machine-readable code and a human-readable
// message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK returns the standard success-with-no-payload envelope.
func OK() Envelope {
	return Envelope{Message: "OK"}
}

// Error returns an error envelope with the given code and message.
func Error(code, message string) Envelope {
	return Envelope{Error: &ErrorBody{Code: code, Message: message}}
}

// WriteJSON serialises v as JSON and writes it to w with the given HTTP
// status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
