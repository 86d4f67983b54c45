package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/minutes/internal/tui"
)

// AddImpactCommand adds the impact command to the root command.
func AddImpactCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Show the paper saved by keeping minutes digitally",
		Long: `Estimate the pages, trees and CO₂ saved by the meetings in history,
assuming 10 printed pages per meeting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImpact(cmd.Context(), cmd, flags)
		},
	}
	root.AddCommand(cmd)
}

func runImpact(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) error {
	a, err := newApp(ctx, flags, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	impact := tui.ComputeImpact(a.history.Len())
	if flags.Output == OutputJSON {
		return tui.NewJSONOutput(cmd.OutOrStdout()).JSON(impact)
	}
	tui.WriteImpact(cmd.OutOrStdout(), impact)
	return nil
}
