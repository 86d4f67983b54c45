package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/minutes/internal/constants"
)

// AddImagesCommand adds the images command to the root command.
func AddImagesCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "images <page>...",
		Short: "Process photographed meeting notes",
		Long: `Send up to 10 photographed pages, in the order given, to the processing
service and show the result.

Examples:
  minutes images page1.jpg page2.jpg
  minutes images notes/*.png --output json`,
		Args: cobra.RangeArgs(1, constants.MaxImages),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImages(cmd.Context(), cmd, flags, args)
		},
	}
	root.AddCommand(cmd)
}

func runImages(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, paths []string) error {
	a, err := newApp(ctx, flags, appOptions{notifyWriter: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	view := newOutcomeView(cmd.OutOrStdout(), flags.Output)
	snap, err := runSubmission(ctx, a, view, func(ctx context.Context) error {
		return a.orchestrator.SubmitImages(ctx, paths)
	})
	if err != nil {
		return inputError(err)
	}
	return view.render(snap)
}
