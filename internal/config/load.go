package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// Overrides carries CLI flag values, the highest-precedence layer.
// Zero values are ignored.
type Overrides struct {
	BaseURL          string
	RecordingBackend string
	HistoryBackend   string
}

// newViperInstance creates a Viper instance with the MINUTES_ env prefix,
// the "." → "_" key replacer, and all defaults registered.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper precedence.
// Missing config files are not an error; invalid values are.
//
// A .env file in the working directory seeds the environment first without
// replacing variables that are already set.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(constants.EnvFileName); err != nil {
		return nil, err
	}

	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(home)

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("server.base_url", cfg.Server.BaseURL).
		Bool("server.auth", cfg.Server.AuthToken != "").
		Dur("server.audio_timeout", cfg.Server.AudioTimeout).
		Dur("server.image_timeout", cfg.Server.ImageTimeout).
		Str("recording.backend", cfg.Recording.Backend).
		Str("history.backend", cfg.History.Backend).
		Msg("configuration loaded")

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
func LoadWithOverrides(ctx context.Context, overrides *Overrides) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
		if err := Validate(cfg); err != nil {
			return nil, errors.Wrap(err, "invalid configuration after overrides")
		}
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level. Environment variables still apply;
// .env files are not read and relative data paths are left empty.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// unmarshal decodes the merged viper state into a Config.
func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// loadDotEnv seeds the process environment from path when the file exists.
func loadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	return nil
}

// loadGlobalConfig attempts to load ~/.minutes/config.yaml.
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		return nil //nolint:nilerr // missing home directory means no global config
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig attempts to load .minutes/config.yaml from the working directory.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults registers every key with its default value.
// IMPORTANT: Keys must match the mapstructure tag names exactly; a key that
// has no default is invisible to AutomaticEnv during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.auth_token", "")
	v.SetDefault("server.audio_timeout", d.Server.AudioTimeout.String())
	v.SetDefault("server.image_timeout", d.Server.ImageTimeout.String())

	v.SetDefault("recording.backend", d.Recording.Backend)
	v.SetDefault("recording.dir", "")
	v.SetDefault("recording.ffmpeg_path", d.Recording.FFmpegPath)
	v.SetDefault("recording.input_format", d.Recording.InputFormat)
	v.SetDefault("recording.input_device", d.Recording.InputDevice)
	v.SetDefault("recording.sample_rate", d.Recording.SampleRate)
	v.SetDefault("recording.channels", d.Recording.Channels)

	v.SetDefault("history.backend", d.History.Backend)
	v.SetDefault("history.path", "")
	v.SetDefault("history.redis_addr", "")
	v.SetDefault("history.capacity", d.History.Capacity)

	v.SetDefault("notifications.bell", d.Notifications.Bell)
	v.SetDefault("notifications.audio", d.Notifications.Audio)

	v.SetDefault("watch.dir", "")
	v.SetDefault("watch.settle_delay", d.Watch.SettleDelay.String())

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg *Config, overrides *Overrides) {
	if overrides.BaseURL != "" {
		cfg.Server.BaseURL = overrides.BaseURL
	}
	if overrides.RecordingBackend != "" {
		cfg.Recording.Backend = overrides.RecordingBackend
	}
	if overrides.HistoryBackend != "" {
		cfg.History.Backend = overrides.HistoryBackend
	}
}

// viperDecoderOption returns the decoder option that turns "5m" style strings
// into time.Duration values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
