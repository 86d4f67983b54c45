// Package errors provides centralized error handling for minutes.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for the capture pipeline.
// A timeout wraps both ErrNetwork and ErrRequestTimeout so callers can match either.
var (
	// ErrDeviceAcquisition indicates the recording device could not be opened
	// (device busy, permission denied, capture tool missing).
	ErrDeviceAcquisition = errors.New("recording device unavailable")

	// ErrFileRead indicates a source artifact could not be read before submission.
	ErrFileRead = errors.New("artifact read failed")

	// ErrNetwork indicates a connection failure, timeout or non-2xx response
	// from the processing service.
	ErrNetwork = errors.New("network request failed")

	// ErrRequestTimeout indicates the processing service did not answer within
	// the per-endpoint timeout.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrDecode indicates the processing service answered with a body that is
	// not a valid meeting result.
	ErrDecode = errors.New("response decode failed")
)

// Sentinel errors for orchestrator and recording session state.
var (
	// ErrBusy indicates a trigger arrived while the pipeline was not idle.
	ErrBusy = errors.New("capture pipeline busy")

	// ErrInvalidTransition indicates an attempted phase change that the state machine forbids.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrAlreadyRecording indicates Start was called on an active recording session.
	ErrAlreadyRecording = errors.New("recording already in progress")

	// ErrNotRecording indicates a stop was requested while nothing was being recorded.
	ErrNotRecording = errors.New("not recording")

	// ErrNoImages indicates an image submission without any pages.
	ErrNoImages = errors.New("no images selected")

	// ErrTooManyImages indicates an image submission exceeding the page limit.
	ErrTooManyImages = errors.New("too many images")

	// ErrInvalidArtifact indicates an artifact of the wrong kind or without paths.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// Sentinel errors for history, configuration and the CLI.
var (
	// ErrHistoryIndex indicates a history position outside the stored range.
	ErrHistoryIndex = errors.New("history index out of range")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidRecording indicates an invalid recording configuration value.
	ErrConfigInvalidRecording = errors.New("invalid recording configuration")

	// ErrConfigInvalidHistory indicates an invalid history configuration value.
	ErrConfigInvalidHistory = errors.New("invalid history configuration")

	// ErrConfigInvalidWatch indicates an invalid drop-folder configuration value.
	ErrConfigInvalidWatch = errors.New("invalid watch configuration")

	// ErrUnknownBackend indicates a recording or history backend name that is not supported.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInteractiveRequired indicates that interactive prompts are required but not available.
	ErrInteractiveRequired = errors.New("interactive prompt required")

	// ErrOperationCanceled indicates the user declined or interrupted an operation.
	ErrOperationCanceled = errors.New("operation canceled")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
