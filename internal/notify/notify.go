// Package notify tells the user that a processing result is ready.
//
// The notification is a short two-line message on the terminal, preceded by a
// bell when enabled. The image flow always notifies; the audio flows only when
// configured to.
//
// Import rules:
//   - CAN import: internal/constants, std lib
//   - MUST NOT import: internal/capture, internal/tui, internal/cli
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mrz1836/minutes/internal/constants"
)

// Config holds notification settings.
type Config struct {
	// BellEnabled emits a terminal bell before the message.
	BellEnabled bool

	// Quiet suppresses all notifications.
	Quiet bool

	// Audio also notifies for recordings and uploaded audio.
	Audio bool
}

// DefaultConfig returns the defaults, matching config.DefaultConfig().Notifications.
func DefaultConfig() Config {
	return Config{BellEnabled: true}
}

// Notifier emits result-ready notifications.
type Notifier struct {
	config Config
	mu     sync.Mutex
	writer io.Writer
}

// New creates a notifier writing to os.Stdout.
func New(cfg Config) *Notifier {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a notifier with a custom writer.
// This is useful for testing.
func NewWithWriter(cfg Config, w io.Writer) *Notifier {
	return &Notifier{config: cfg, writer: w}
}

// ShouldNotify reports whether a ready result of kind produces a notification.
func (n *Notifier) ShouldNotify(kind constants.ArtifactKind) bool {
	if n == nil || n.config.Quiet {
		return false
	}
	switch kind {
	case constants.ArtifactImages:
		return true
	case constants.ArtifactAudio:
		return n.config.Audio
	default:
		return false
	}
}

// ResultReady notifies that a result of kind is ready. It reports whether
// anything was emitted.
func (n *Notifier) ResultReady(kind constants.ArtifactKind) bool {
	if !n.ShouldNotify(kind) {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.config.BellEnabled {
		_, _ = fmt.Fprint(n.writer, "\a")
	}
	_, _ = fmt.Fprintf(n.writer, "%s\n%s\n", constants.NotificationTitle, constants.NotificationBody)
	return true
}
