package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/minutes/internal/config"
	"github.com/mrz1836/minutes/internal/errors"
)

// maskedValue replaces secrets in displayed configuration.
const maskedValue = "********"

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigShowCmd(flags))
	cmd.AddCommand(newConfigPathCmd())
	root.AddCommand(cmd)
}

// newConfigShowCmd creates the 'config show' subcommand for displaying configuration.
func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration after merging defaults, the global and
project config files, MINUTES_* environment variables and flags.

The server auth token is masked in the output.

Examples:
  minutes config show              # YAML
  minutes config show --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			global, err := config.GlobalConfigPath()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "global:  %s\n", global)
			_, _ = fmt.Fprintf(w, "project: %s\n", config.ProjectConfigPath())
			return nil
		},
	}
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg, err := config.LoadWithOverrides(ctx, &config.Overrides{
		BaseURL:        flags.Server,
		HistoryBackend: flags.HistoryBackend,
	})
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	shown := maskSecrets(*cfg)
	if flags.Output == OutputJSON {
		return writeJSON(w, shown)
	}
	return writeYAML(w, shown)
}

// maskSecrets returns a copy of cfg safe to print.
func maskSecrets(cfg config.Config) config.Config {
	if cfg.Server.AuthToken != "" {
		cfg.Server.AuthToken = maskedValue
	}
	return cfg
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
