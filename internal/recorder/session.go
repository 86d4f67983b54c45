// Package recorder captures microphone audio into a file.
//
// A Session owns one capture Device at a time. Start and Stop flip the
// recording flag synchronously; finalizing the file happens in the
// background and its outcome is delivered once on the channel Stop returns.
//
// Import rules:
//   - CAN import: internal/clock, internal/config, internal/constants, internal/errors, std lib
//   - MUST NOT import: internal/capture, internal/client, internal/cli
package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// Finished is the outcome of one recording. Path is empty when the device
// failed to produce a file; Err then says why.
type Finished struct {
	Path string
	Err  error
}

// Session records one meeting at a time into dir.
type Session struct {
	dir    string
	device Device
	clock  clock.Clock

	mu         sync.Mutex
	recording  bool
	path       string
	logger     zerolog.Logger
	finalizing chan struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the clock used to name recording files.
func WithClock(c clock.Clock) SessionOption {
	return func(s *Session) {
		s.clock = c
	}
}

// NewSession creates a Session writing into dir with device.
func NewSession(dir string, device Device, opts ...SessionOption) *Session {
	s := &Session{
		dir:    dir,
		device: device,
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start acquires the device and begins writing a new recording file.
// A device that cannot be acquired yields ErrDeviceAcquisition and leaves
// the session idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording {
		return errors.ErrAlreadyRecording
	}

	// The previous file must be finalized before the device is reused.
	if s.finalizing != nil {
		select {
		case <-s.finalizing:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "recorder").Logger()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		logger.Error().Err(err).Str("dir", s.dir).Msg("cannot create recordings directory")
		return errors.Join(err, errors.ErrDeviceAcquisition)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s%d%s",
		constants.RecordingFilePrefix, s.clock.Now().Unix(), s.device.Ext()))

	if err := s.device.Start(ctx, path); err != nil {
		logger.Error().Err(err).Str("device", s.device.Name()).Msg("failed to acquire recording device")
		return errors.Join(err, errors.ErrDeviceAcquisition)
	}

	s.recording = true
	s.path = path
	s.logger = logger
	logger.Info().Str("path", path).Str("device", s.device.Name()).Msg("recording started")
	return nil
}

// Stop ends the recording. The returned channel yields exactly one value
// once the file is finalized and is then closed. When nothing is being
// recorded it yields an empty Finished immediately.
func (s *Session) Stop() <-chan Finished {
	out := make(chan Finished, 1)

	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		out <- Finished{Err: errors.ErrNotRecording}
		close(out)
		return out
	}

	s.recording = false
	path := s.path
	s.path = ""
	logger := s.logger
	finalizing := make(chan struct{})
	s.finalizing = finalizing
	s.mu.Unlock()

	go func() {
		defer close(finalizing)
		defer close(out)

		if err := s.device.Finish(); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("recording failed to finalize")
			out <- Finished{Err: err}
			return
		}
		logger.Info().Str("path", path).Msg("recording finished")
		out <- Finished{Path: path}
	}()
	return out
}

// IsRecording reports whether a recording is in progress.
func (s *Session) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Path returns the file being written, or "" when idle.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}
