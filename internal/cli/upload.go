package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/mrz1836/minutes/internal/errors"
)

// AddUploadCommand adds the upload command to the root command.
func AddUploadCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Process an existing meeting recording",
		Long: `Send an audio file to the processing service and show the result.

Supported formats are whatever the service accepts; m4a, mp3, wav and flac are typical.

Examples:
  minutes upload standup.m4a
  minutes upload standup.m4a --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), cmd, flags, args[0])
		},
	}
	root.AddCommand(cmd)
}

func runUpload(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, path string) error {
	a, err := newApp(ctx, flags, appOptions{notifyWriter: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	view := newOutcomeView(cmd.OutOrStdout(), flags.Output)
	snap, err := runSubmission(ctx, a, view, func(ctx context.Context) error {
		return a.orchestrator.SubmitExistingFile(ctx, path)
	})
	if err != nil {
		return inputError(err)
	}
	return view.render(snap)
}

// inputError marks trigger rejections caused by the arguments as invalid input.
func inputError(err error) error {
	for _, target := range []error{errors.ErrInvalidArtifact, errors.ErrNoImages, errors.ErrTooManyImages} {
		if stderrors.Is(err, target) {
			return errors.NewExitCode2Error(err)
		}
	}
	return err
}
