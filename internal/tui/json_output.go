package tui

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mrz1836/minutes/internal/errors"
)

// JSONOutput writes one compact JSON object per line.
type JSONOutput struct {
	enc *json.Encoder
}

// NewJSONOutput returns a JSONOutput on w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{enc: json.NewEncoder(w)}
}

// event is a status line. Details holds the raw error text when it differs
// from Message; Suggestion holds the suggested action.
type event struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (o *JSONOutput) emit(e event) {
	//nolint:errchkjson // status lines have no error path
	_ = o.enc.Encode(e)
}

// Success writes {"type":"success",...}.
func (o *JSONOutput) Success(msg string) { o.emit(event{Type: "success", Message: msg}) }

// Info writes {"type":"info",...}.
func (o *JSONOutput) Info(msg string) { o.emit(event{Type: "info", Message: msg}) }

// Error writes {"type":"error",...} with details and suggestion when known.
func (o *JSONOutput) Error(err error) {
	msg, action := errors.Actionable(err)
	e := event{Type: "error", Message: msg, Suggestion: action}
	if raw := err.Error(); raw != msg {
		e.Details = raw
	}
	o.emit(e)
}

// JSON writes v.
func (o *JSONOutput) JSON(v any) error {
	return o.enc.Encode(v)
}

// Spinner returns a NoopSpinner so progress never interleaves with JSON.
func (o *JSONOutput) Spinner(context.Context, string) Spinner {
	return &NoopSpinner{}
}
