package config

import (
	"runtime"

	"github.com/mrz1836/minutes/internal/constants"
)

// DefaultBaseURL is the processing service address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment variables,
// and CLI flags override.
func DefaultConfig() *Config {
	format, device := defaultInputDevice(runtime.GOOS)
	return &Config{
		Server: ServerConfig{
			BaseURL:      DefaultBaseURL,
			AudioTimeout: constants.DefaultAudioTimeout,
			ImageTimeout: constants.DefaultImageTimeout,
		},
		Recording: RecordingConfig{
			Backend:     BackendFFmpeg,
			FFmpegPath:  "ffmpeg",
			InputFormat: format,
			InputDevice: device,
			SampleRate:  constants.RecordingSampleRate,
			Channels:    constants.RecordingChannels,
		},
		History: HistoryConfig{
			Backend:  HistoryBackendFile,
			Capacity: constants.HistoryCapacity,
		},
		Notifications: NotificationsConfig{
			Bell: true,
		},
		Watch: WatchConfig{
			SettleDelay: constants.DefaultWatchSettleDelay,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "minutes",
		},
	}
}

// defaultInputDevice returns the ffmpeg input format and device for the platform's
// default microphone.
func defaultInputDevice(goos string) (format, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":default"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}
