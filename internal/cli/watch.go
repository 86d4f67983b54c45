package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/signal"
	"github.com/mrz1836/minutes/internal/watcher"
)

// AddWatchCommand adds the watch command to the root command.
func AddWatchCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Process recordings and photos dropped into a folder",
		Long: `Watch a folder and process each new audio file or photo as it appears,
one at a time. Results are saved to history like any other run.

The folder defaults to watch.dir (~/.minutes/inbox). Press Ctrl+C to stop.

Examples:
  minutes watch
  minutes watch ~/Dropbox/meetings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd.Context(), cmd, flags, dir)
		},
	}
	root.AddCommand(cmd)
}

func runWatch(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, dir string) error {
	a, err := newApp(ctx, flags, appOptions{notifyWriter: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	if dir == "" {
		dir = a.cfg.Watch.Dir
	}

	view := newOutcomeView(cmd.OutOrStdout(), flags.Output)
	w, err := watcher.New(dir, watchHandler(a, view), a.cfg.Watch.SettleDelay)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	handler := signal.NewHandler(ctx)
	defer handler.Stop()

	view.out.Info("Watching " + w.Dir() + " (Ctrl+C to stop)")
	if err := w.Run(handler.Context()); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchHandler submits one dropped file and prints its outcome. A failed
// file is reported and watching continues.
func watchHandler(a *app, view *outcomeView) watcher.Handler {
	return func(ctx context.Context, ev watcher.Event) error {
		view.out.Info("Processing " + ev.Path)

		snap, err := runSubmission(ctx, a, view, func(ctx context.Context) error {
			if ev.Kind == constants.ArtifactImages {
				return a.orchestrator.SubmitImages(ctx, []string{ev.Path})
			}
			return a.orchestrator.SubmitExistingFile(ctx, ev.Path)
		})
		if err != nil {
			return err
		}
		if err := view.render(snap); err != nil {
			view.out.Error(err)
		}
		return nil
	}
}
