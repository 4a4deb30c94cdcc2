// Package errors defines the JSON error shapes of the metering API.
package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is the uniform {code, message} body every non-2xx response
// carries. Codes are stable identifiers for the client, messages are not.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RateLimitError is the 429 body of the attempt endpoint; RetryAfterSec
// tells the client when the current window opens again.
type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
