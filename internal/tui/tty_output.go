package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/minutes/internal/errors"
)

// TTYOutput writes styled lines for a person at a terminal.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
	table  *TableStyles
}

// NewTTYOutput returns a TTYOutput on w. NO_COLOR disables styling.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()
	return &TTYOutput{w: w, styles: NewOutputStyles(), table: NewTableStyles()}
}

func (o *TTYOutput) println(style lipgloss.Style, text string) {
	_, _ = fmt.Fprintln(o.w, style.Render(text))
}

// Success prints "✓ msg".
func (o *TTYOutput) Success(msg string) { o.println(o.styles.Success, "✓ "+msg) }

// Info prints msg unadorned.
func (o *TTYOutput) Info(msg string) { o.println(o.styles.Info, msg) }

// Error prints "✗ message" and, when one is known, a dim "▸ Try:" hint below it.
func (o *TTYOutput) Error(err error) {
	msg, action := errors.Actionable(err)
	o.println(o.styles.Error, "✗ "+msg)
	if action != "" {
		o.println(o.styles.Dim, "  ▸ Try: "+action)
	}
}

// Table prints rows under headers. Columns are sized by display width so
// CJK titles line up; short rows are padded with empty cells.
func (o *TTYOutput) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	measure := func(row []string) {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	render := func(row []string, style lipgloss.Style) {
		cells := make([]string, len(headers))
		for i := range cells {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = style.Render(padRight(cell, widths[i]))
		}
		_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	render(headers, o.table.Header)
	for _, row := range rows {
		render(row, o.table.Cell)
	}
}

// JSON writes v indented for reading.
func (o *TTYOutput) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Spinner animates msg on the writer until ctx ends.
func (o *TTYOutput) Spinner(ctx context.Context, msg string) Spinner {
	return NewSpinnerAdapter(ctx, o.w, msg)
}
