package tui

import (
	"context"
	"io"
)

// Output format names accepted by NewOutput.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Output is where commands report status. Text output is styled for people;
// JSON output writes one object per line for scripts.
type Output interface {
	Success(msg string)
	// Error reports err with its user-facing message and suggested action.
	Error(err error)
	Info(msg string)
	// JSON writes v as a single document.
	JSON(v any) error
	// Spinner shows progress until ctx ends or Stop is called.
	Spinner(ctx context.Context, msg string) Spinner
}

// NewOutput picks the Output for format, defaulting to text.
func NewOutput(w io.Writer, format string) Output {
	if format == FormatJSON {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
