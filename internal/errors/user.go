package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Order matters: more specific sentinels come before the ones they are wrapped with.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Capture
	// ===================
	{
		err: ErrDeviceAcquisition,
		info: ErrorInfo{
			Message: "Could not start recording. The microphone is busy or access was denied.",
			Action:  "Close other apps using the microphone, check permissions, or set recording.backend.",
		},
	},
	{
		err: ErrFileRead,
		info: ErrorInfo{
			Message: "Could not read the file to upload.",
			Action:  "Check that the path exists and is readable.",
		},
	},
	{
		err: ErrNoImages,
		info: ErrorInfo{
			Message: "No images were selected.",
		},
	},
	{
		err: ErrTooManyImages,
		info: ErrorInfo{
			Message: "Too many images. At most 10 pages can be processed at once.",
			Action:  "Split the pages into several submissions.",
		},
	},

	// ===================
	// Processing service
	// ===================
	{
		err: ErrRequestTimeout,
		info: ErrorInfo{
			Message: "The processing service did not respond in time.",
			Action:  "Retry later, or raise server.audio_timeout / server.image_timeout.",
		},
	},
	{
		err: ErrNetwork,
		info: ErrorInfo{
			Message: "Could not reach the processing service.",
			Action:  "Check server.base_url and your network connection.",
		},
	},
	{
		err: ErrDecode,
		info: ErrorInfo{
			Message: "The processing service returned an unexpected response.",
			Action:  "Check that server.base_url points at a compatible service.",
		},
	},

	// ===================
	// State
	// ===================
	{
		err: ErrBusy,
		info: ErrorInfo{
			Message: "Another capture is still in progress.",
			Action:  "Wait for it to finish before starting a new one.",
		},
	},
	{
		err: ErrHistoryIndex,
		info: ErrorInfo{
			Message: "No summary at that position.",
			Action:  "Run 'minutes history list' to see valid positions.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "The history file is locked by another minutes process.",
			Action:  "Wait for the other process to finish and retry.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigInvalidServer,
		info: ErrorInfo{
			Message: "Invalid server configuration.",
			Action:  "Run 'minutes config show' and fix the server section.",
		},
	},
	{
		err: ErrConfigInvalidRecording,
		info: ErrorInfo{
			Message: "Invalid recording configuration.",
			Action:  "Run 'minutes config show' and fix the recording section.",
		},
	},
	{
		err: ErrConfigInvalidHistory,
		info: ErrorInfo{
			Message: "Invalid history configuration.",
			Action:  "Run 'minutes config show' and fix the history section.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrInteractiveRequired,
		info: ErrorInfo{
			Message: "This command needs an interactive terminal.",
			Action:  "Pass --yes to skip the confirmation prompt.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that have no clear action, the action string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
