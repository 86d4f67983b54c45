package recorder

import (
	"context"

	"github.com/mrz1836/minutes/internal/config"
	"github.com/mrz1836/minutes/internal/errors"
)

// Device is one capture backend.
//
// Start acquires the hardware and begins writing to path; it must fail fast
// when the device is busy, missing or denied. Finish stops capture and
// completes the file, returning an error when no usable file was produced.
// A Device is reusable after Finish returns.
type Device interface {
	Start(ctx context.Context, path string) error
	Finish() error
	// Ext is the recording file extension including the dot.
	Ext() string
	// Name identifies the backend in logs.
	Name() string
}

// NewDevice builds the backend selected by cfg.Backend.
func NewDevice(cfg config.RecordingConfig) (Device, error) {
	switch cfg.Backend {
	case config.BackendFFmpeg:
		return NewFFmpegDevice(cfg), nil
	case config.BackendNative:
		return NewNativeDevice(cfg), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownBackend, "recording backend %q", cfg.Backend)
	}
}
