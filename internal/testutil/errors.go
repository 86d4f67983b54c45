// Package testutil provides testing utilities for minutes.
//
// This package contains mock errors shared by test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate device, storage and network failures in tests.
var (
	// ErrMockDeviceBusy simulates a microphone held by another application.
	ErrMockDeviceBusy = errors.New("device busy")

	// ErrMockPermissionDenied simulates missing microphone permission.
	ErrMockPermissionDenied = errors.New("permission denied")

	// ErrMockDeviceLost simulates a device disappearing mid-recording.
	ErrMockDeviceLost = errors.New("device lost")

	// ErrMockDiskFull simulates a failed history write.
	ErrMockDiskFull = errors.New("disk full")

	// ErrMockConnectionRefused simulates an unreachable store or service.
	ErrMockConnectionRefused = errors.New("connection refused")

	// ErrMockConnectionReset simulates a dropped connection mid-request.
	ErrMockConnectionReset = errors.New("connection reset")
)
