package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrz1836/minutes/internal/errors"
)

// maxDetailLen bounds how much of a non-JSON error body is kept.
const maxDetailLen = 200

// StatusError is returned for non-2xx responses. It matches errors.ErrNetwork.
type StatusError struct {
	StatusCode int
	// Detail is the service's error message, taken from a {"detail": ...} body
	// when present, otherwise the start of the raw body.
	Detail string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("processing service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("processing service returned status %d: %s", e.StatusCode, e.Detail)
}

// Unwrap lets errors.Is match ErrNetwork.
func (e *StatusError) Unwrap() error {
	return errors.ErrNetwork
}

// newStatusError builds a StatusError from a response body.
func newStatusError(code int, body []byte) *StatusError {
	return &StatusError{StatusCode: code, Detail: extractDetail(body)}
}

// extractDetail reads the "detail" member of an error body. String details are
// used as-is; structured ones (validation errors) are kept as compact JSON.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return text
		}
		return string(payload.Detail)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxDetailLen {
		text = text[:maxDetailLen] + "..."
	}
	return text
}
