// Package config provides configuration management for minutes with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (MINUTES_* prefix, optionally seeded from ./.env)
//  3. Project config (.minutes/config.yaml)
//  4. Global config (~/.minutes/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for minutes.
type Config struct {
	// Server describes the remote processing service.
	Server ServerConfig `yaml:"server" mapstructure:"server" json:"server"`

	// Recording controls microphone capture.
	Recording RecordingConfig `yaml:"recording" mapstructure:"recording" json:"recording"`

	// History controls where past results are kept.
	History HistoryConfig `yaml:"history" mapstructure:"history" json:"history"`

	// Notifications controls the result-ready notification.
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications" json:"notifications"`

	// Watch controls the drop-folder intake.
	Watch WatchConfig `yaml:"watch" mapstructure:"watch" json:"watch"`

	// Telemetry controls OpenTelemetry trace export.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry" json:"telemetry"`
}

// ServerConfig describes the remote processing service.
type ServerConfig struct {
	// BaseURL is prefixed to /process-meeting and /process-images.
	// Default: "http://localhost:8000"
	BaseURL string `yaml:"base_url" mapstructure:"base_url" json:"base_url"`

	// AuthToken, when set, is sent as "Authorization: Bearer <token>".
	// Prefer MINUTES_SERVER_AUTH_TOKEN over writing it to a file.
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token" json:"auth_token"`

	// AudioTimeout bounds an audio submission.
	// Default: 300 seconds
	AudioTimeout time.Duration `yaml:"audio_timeout" mapstructure:"audio_timeout" json:"audio_timeout"`

	// ImageTimeout bounds an image submission.
	// Default: 120 seconds
	ImageTimeout time.Duration `yaml:"image_timeout" mapstructure:"image_timeout" json:"image_timeout"`
}

// RecordingConfig controls microphone capture.
type RecordingConfig struct {
	// Backend selects the capture implementation: "ffmpeg" or "native".
	// Default: "ffmpeg"
	Backend string `yaml:"backend" mapstructure:"backend" json:"backend"`

	// Dir is where recordings are written. Empty means ~/.minutes/recordings.
	Dir string `yaml:"dir" mapstructure:"dir" json:"dir"`

	// FFmpegPath is the ffmpeg binary used by the ffmpeg backend.
	// Default: "ffmpeg" (resolved through PATH)
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path" json:"ffmpeg_path"`

	// InputFormat is the ffmpeg input device format (avfoundation, pulse, dshow).
	// Default: depends on the operating system
	InputFormat string `yaml:"input_format" mapstructure:"input_format" json:"input_format"`

	// InputDevice is the ffmpeg input device name.
	// Default: depends on the operating system
	InputDevice string `yaml:"input_device" mapstructure:"input_device" json:"input_device"`

	// SampleRate is the capture sample rate in Hz.
	// Default: 44100
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate" json:"sample_rate"`

	// Channels is the capture channel count.
	// Default: 1
	Channels int `yaml:"channels" mapstructure:"channels" json:"channels"`
}

// HistoryConfig controls where past results are kept.
type HistoryConfig struct {
	// Backend selects the key-value store: "file" or "redis".
	// Default: "file"
	Backend string `yaml:"backend" mapstructure:"backend" json:"backend"`

	// Path is the JSON file used by the file backend. Empty means ~/.minutes/history.json.
	Path string `yaml:"path" mapstructure:"path" json:"path"`

	// RedisAddr is the host:port used by the redis backend.
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr" json:"redis_addr"`

	// Capacity is the number of results kept, newest first.
	// Default: 20, Valid range: 1-20
	Capacity int `yaml:"capacity" mapstructure:"capacity" json:"capacity"`
}

// NotificationsConfig controls the result-ready notification.
type NotificationsConfig struct {
	// Bell enables the terminal bell on a ready result.
	// Default: true
	Bell bool `yaml:"bell" mapstructure:"bell" json:"bell"`

	// Audio also notifies for recordings and audio uploads. The image flow always notifies.
	// Default: false
	Audio bool `yaml:"audio" mapstructure:"audio" json:"audio"`
}

// WatchConfig controls the drop-folder intake.
type WatchConfig struct {
	// Dir is the watched folder. Empty means ~/.minutes/inbox.
	Dir string `yaml:"dir" mapstructure:"dir" json:"dir"`

	// SettleDelay is how long to wait after a create event before reading the file.
	// Default: 500ms
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay" json:"settle_delay"`
}

// TelemetryConfig controls OpenTelemetry trace export.
type TelemetryConfig struct {
	// Enabled installs an OTLP/HTTP exporter configured through OTEL_* variables.
	// Default: false
	Enabled bool `yaml:"enabled" mapstructure:"enabled" json:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "minutes"
	ServiceName string `yaml:"service_name" mapstructure:"service_name" json:"service_name"`
}

// Recording backends.
const (
	BackendFFmpeg = "ffmpeg"
	BackendNative = "native"
)

// History backends.
const (
	HistoryBackendFile  = "file"
	HistoryBackendRedis = "redis"
)
