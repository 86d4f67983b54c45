// Package tui renders minutes output in the terminal.
//
// It holds the lipgloss style system, the text and JSON Output
// implementations, the processing spinner, the result and history views,
// and the live recording model.
//
// Colors use AdaptiveColor for light and dark terminals. Call CheckNoColor at
// the start of a command to honor NO_COLOR and TERM=dumb.
//
// Import rules:
//   - CAN import: internal/capture, internal/clock, internal/constants,
//     internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/cli, internal/client, internal/history
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/mrz1836/minutes/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and headings.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for ready results.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorError is red, used for failures and the recording indicator.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// OutputStyles holds the status line styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
	}
}

// CheckNoColor switches lipgloss to plain ASCII when colors are unsupported.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value, including
// empty) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// PhaseColor returns the color used for a pipeline phase.
func PhaseColor(phase constants.PipelinePhase) lipgloss.AdaptiveColor {
	switch phase {
	case constants.PhaseRecording, constants.PhaseFailed:
		return ColorError
	case constants.PhaseProcessing:
		return ColorPrimary
	case constants.PhaseSucceeded:
		return ColorSuccess
	case constants.PhaseIdle:
		return ColorMuted
	}
	return ColorMuted
}

// PhaseIcon returns the status icon for a pipeline phase.
func PhaseIcon(phase constants.PipelinePhase) string {
	icons := map[constants.PipelinePhase]string{
		constants.PhaseIdle:       "○",
		constants.PhaseRecording:  "●",
		constants.PhaseProcessing: "⟳",
		constants.PhaseSucceeded:  "✓",
		constants.PhaseFailed:     "✗",
	}
	if icon, ok := icons[phase]; ok {
		return icon
	}
	return "?"
}

// padRight pads s with spaces to the given display width, truncating with
// an ellipsis when it is wider. Wide runes count as two columns.
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// indent prefixes every non-empty line of s with prefix.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
