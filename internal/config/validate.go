package config

import (
	"net/url"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - server.base_url must be an absolute http(s) URL
//   - server timeouts must be positive
//   - recording.backend must be ffmpeg or native; sample rate positive; 1-2 channels
//   - history.backend must be file or redis; redis needs redis_addr; capacity 1-20
//   - watch.settle_delay must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateServerConfig(&cfg.Server); err != nil {
		return err
	}
	if err := validateRecordingConfig(&cfg.Recording); err != nil {
		return err
	}
	if err := validateHistoryConfig(&cfg.History); err != nil {
		return err
	}
	if cfg.Watch.SettleDelay < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatch, "watch.settle_delay must not be negative, got %s", cfg.Watch.SettleDelay)
	}
	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.BaseURL == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.base_url must not be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.base_url must be an http(s) URL, got %q", cfg.BaseURL)
	}
	if cfg.AudioTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.audio_timeout must be positive, got %s", cfg.AudioTimeout)
	}
	if cfg.ImageTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.image_timeout must be positive, got %s", cfg.ImageTimeout)
	}
	return nil
}

func validateRecordingConfig(cfg *RecordingConfig) error {
	switch cfg.Backend {
	case BackendFFmpeg:
		if cfg.FFmpegPath == "" {
			return errors.Wrap(errors.ErrConfigInvalidRecording, "recording.ffmpeg_path must not be empty")
		}
	case BackendNative:
	default:
		return errors.Wrapf(errors.ErrUnknownBackend, "recording.backend %q (want ffmpeg or native)", cfg.Backend)
	}
	if cfg.SampleRate <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidRecording,
			"recording.sample_rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return errors.Wrapf(errors.ErrConfigInvalidRecording,
			"recording.channels must be 1 or 2, got %d", cfg.Channels)
	}
	return nil
}

func validateHistoryConfig(cfg *HistoryConfig) error {
	switch cfg.Backend {
	case HistoryBackendFile:
	case HistoryBackendRedis:
		if cfg.RedisAddr == "" {
			return errors.Wrap(errors.ErrConfigInvalidHistory, "history.redis_addr is required for the redis backend")
		}
	default:
		return errors.Wrapf(errors.ErrUnknownBackend, "history.backend %q (want file or redis)", cfg.Backend)
	}
	if cfg.Capacity < 1 || cfg.Capacity > constants.HistoryCapacity {
		return errors.Wrapf(errors.ErrConfigInvalidHistory,
			"history.capacity must be between 1 and %d, got %d", constants.HistoryCapacity, cfg.Capacity)
	}
	return nil
}
