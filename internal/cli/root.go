// Package cli provides the command-line interface for minutes.
//
// Import rules:
//   - CAN import: every internal package
//   - MUST NOT be imported by: any internal package
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/tui"
)

// BuildInfo is stamped into the binary with -ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

//nolint:gochecknoglobals // set once per invocation in prepareCommand
var (
	globalLogger   zerolog.Logger
	globalLoggerMu sync.RWMutex
)

// GetLogger returns the logger built for the running command. Before the
// root pre-run has executed it returns a disabled logger.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// prepareCommand resolves global flags against the environment, validates
// them and attaches the logger to the command context.
func prepareCommand(cmd *cobra.Command, v *viper.Viper, flags *GlobalFlags) error {
	if err := BindGlobalFlags(v, cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	applyBoundFlags(v, cmd, flags)

	if !IsValidOutputFormat(flags.Output) {
		return errors.NewExitCode2Error(fmt.Errorf("%w: %q must be one of %v",
			errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats()))
	}

	logger := InitLogger(flags.Verbose, flags.Quiet)
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx))
	return nil
}

// newRootCmd creates and returns the root command for the minutes CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "minutes",
		Short: "Turn meetings into minutes, decisions and action items",
		Long: `minutes records a meeting (or takes an existing recording or photographed
notes), sends it to a processing service and shows the structured result.

Features:
  • Record from the microphone and submit when you stop
  • Upload audio files or photographed note pages
  • Watch a drop folder and process files as they arrive
  • Keep the last 20 results and share them as plain text`,
		Version: formatVersion(info),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return prepareCommand(cmd, v, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddRecordCommand(cmd, flags)
	AddUploadCommand(cmd, flags)
	AddImagesCommand(cmd, flags)
	AddWatchCommand(cmd, flags)
	AddHistoryCommand(cmd, flags)
	AddImpactCommand(cmd, flags)
	AddConfigCommand(cmd, flags)
	AddVersionCommand(cmd, info)

	return cmd
}

// formatVersion renders info as "1.2.0 (commit: abc123, built: 2026-10-01)",
// filling gaps for local builds.
func formatVersion(info BuildInfo) string {
	or := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)",
		or(info.Version, "dev"), or(info.Commit, "none"), or(info.Date, "unknown"))
}

// Execute runs the CLI. A failing command's error is printed once to stderr
// in the selected output format and returned for the exit code.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format := flags.Output
		if !IsValidOutputFormat(format) {
			format = OutputText
		}
		tui.NewOutput(cmd.ErrOrStderr(), format).Error(err)
	}
	return err
}
