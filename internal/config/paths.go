package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// HomeEnvVar overrides the minutes home directory.
const HomeEnvVar = "MINUTES_HOME"

// HomeDir returns the minutes data directory.
// MINUTES_HOME wins; otherwise it is ~/.minutes.
func HomeDir() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.MinutesHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
// This is always .minutes/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.MinutesHome, constants.GlobalConfigName)
}

// ResolvePaths fills empty directory and file settings with locations under home.
func (c *Config) ResolvePaths(home string) {
	if c.Recording.Dir == "" {
		c.Recording.Dir = filepath.Join(home, constants.RecordingsDir)
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(home, constants.HistoryFileName)
	}
	if c.Watch.Dir == "" {
		c.Watch.Dir = filepath.Join(home, "inbox")
	}
}
