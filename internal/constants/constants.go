// Package constants provides centralized constant values used throughout minutes.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by minutes for state persistence.
const (
	// HistoryFileName is the name of the JSON file that stores the result history
	// when the file backend is used.
	HistoryFileName = "history.json"

	// HistoryKey is the single key under which the serialized history list is stored.
	HistoryKey = "meeting_history"
)

// Directory names and paths used by minutes for organizing data.
const (
	// MinutesHome is the hidden directory name where minutes stores all its data.
	// This directory is created in the user's home directory.
	MinutesHome = ".minutes"

	// RecordingsDir is the directory name where raw recordings are written.
	RecordingsDir = "recordings"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Remote processing endpoints, relative to the configured base URL.
const (
	// EndpointProcessMeeting accepts a single audio part named "file".
	EndpointProcessMeeting = "/process-meeting"

	// EndpointProcessImages accepts one or more image parts named "files".
	EndpointProcessImages = "/process-images"
)

// Timeout configurations for the processing round trip.
// Audio transcription is slower than page recognition, hence the asymmetry.
const (
	// DefaultAudioTimeout bounds a /process-meeting request.
	DefaultAudioTimeout = 300 * time.Second

	// DefaultImageTimeout bounds a /process-images request.
	DefaultImageTimeout = 120 * time.Second

	// LockTimeout is how long to wait for the history file lock.
	LockTimeout = 5 * time.Second

	// DefaultWatchSettleDelay is how long the drop-folder watcher waits after a
	// create event before reading the new file.
	DefaultWatchSettleDelay = 500 * time.Millisecond
)

// Capacity limits.
const (
	// HistoryCapacity is the maximum number of results kept in the history.
	HistoryCapacity = 20

	// MaxImages is the maximum number of pages accepted in one image submission.
	MaxImages = 10
)

// Recording defaults.
const (
	// RecordingFilePrefix prefixes every recording file name, followed by the unix time.
	RecordingFilePrefix = "meeting_"

	// RecordingSampleRate is the default capture sample rate in Hz.
	RecordingSampleRate = 44100

	// RecordingChannels is the default capture channel count (mono).
	RecordingChannels = 1
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 28

	// LogCompress controls gzip compression of rotated log files.
	LogCompress = true
)

// Paper and carbon figures used by the impact summary.
const (
	// PagesPerMeeting is the estimated number of printed pages one summary replaces.
	PagesPerMeeting = 10

	// PagesPerTree is the estimated number of sheets produced from one tree.
	PagesPerTree = 8333

	// GramsCO2PerPage is the estimated CO2 cost of one printed page.
	GramsCO2PerPage = 4
)
