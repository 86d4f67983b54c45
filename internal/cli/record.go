package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/signal"
	"github.com/mrz1836/minutes/internal/tui"
)

// recordOptions holds flags specific to the record command.
type recordOptions struct {
	backend  string
	duration time.Duration
}

// AddRecordCommand adds the record command to the root command.
func AddRecordCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &recordOptions{}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a meeting and process it when you stop",
		Long: `Record from the default microphone. Stopping the recording submits it to the
processing service and shows the minutes, decisions and action items.

In a terminal, press enter to stop or ctrl+c to abort. Without a terminal
(or with --output json), the first interrupt stops and submits, the second
one aborts. An aborted recording is kept on disk but not submitted.

Examples:
  minutes record
  minutes record --for 30m
  minutes record --backend native`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecord(cmd.Context(), cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "recording backend: ffmpeg or native (overrides recording.backend)")
	cmd.Flags().DurationVar(&opts.duration, "for", 0, "stop and submit automatically after this long")

	root.AddCommand(cmd)
}

func runRecord(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *recordOptions) error {
	if opts.duration < 0 {
		return errors.NewExitCode2Error(fmt.Errorf("--for must not be negative, got %s", opts.duration))
	}

	a, err := newApp(ctx, flags, appOptions{
		recording:        true,
		recordingBackend: opts.backend,
		notifyWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	handler := signal.NewTwoStageHandler(ctx)
	defer handler.Stop()
	ctx = handler.Context()

	if err := a.orchestrator.BeginRecording(ctx); err != nil {
		return err
	}
	logger := GetLogger()
	logger.Info().Str("path", a.session.Path()).Msg("recording started")

	view := newOutcomeView(cmd.OutOrStdout(), flags.Output)
	if flags.Output == OutputText && terminalCheck() {
		return runRecordInteractive(ctx, cmd, a, view, opts.duration)
	}
	return runRecordHeadless(ctx, a, view, handler, opts.duration)
}

// runRecordInteractive drives the recording from the live terminal view.
func runRecordInteractive(ctx context.Context, cmd *cobra.Command, a *app, view *outcomeView, limit time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe := a.orchestrator.Subscribe()
	defer unsubscribe()

	model := tui.NewRecordModel(updates, func() error {
		return a.orchestrator.StopRecording(ctx)
	}, nil)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithOutput(cmd.ErrOrStderr()),
	)

	if limit > 0 {
		timer := time.AfterFunc(limit, func() {
			program.Send(tea.KeyMsg{Type: tea.KeyEnter})
		})
		defer timer.Stop()
	}

	_, runErr := program.Run()
	if model.Aborted() || ctx.Err() != nil {
		cancel()
		return abortRecording(ctx, a, view)
	}
	if runErr != nil {
		return runErr
	}
	if err := model.Err(); err != nil {
		return err
	}

	snap, err := settle(ctx, a)
	if err != nil {
		return err
	}
	return view.render(snap)
}

// runRecordHeadless records until the first interrupt or the time limit,
// then submits. A second interrupt aborts.
func runRecordHeadless(ctx context.Context, a *app, view *outcomeView, handler *signal.Handler, limit time.Duration) error {
	view.out.Info("Recording... press Ctrl+C to stop and process, twice to abort")

	var deadline <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case <-handler.StopRequested():
	case <-deadline:
	case <-ctx.Done():
		return abortRecording(ctx, a, view)
	}

	if err := a.orchestrator.StopRecording(ctx); err != nil {
		return err
	}

	snap, err := awaitOutcome(ctx, a, view)
	if err != nil {
		if ctx.Err() != nil {
			return errors.ErrOperationCanceled
		}
		return err
	}
	return view.render(snap)
}

// abortRecording discards a still-running recording and reports the cancellation.
func abortRecording(ctx context.Context, a *app, view *outcomeView) error {
	if a.orchestrator.Snapshot().Phase == constants.PhaseRecording {
		path, err := a.orchestrator.DiscardRecording(context.WithoutCancel(ctx))
		switch {
		case err != nil:
			logger := GetLogger()
			logger.Warn().Err(err).Msg("recording discarded without a file")
		case path != "":
			view.out.Info("Recording kept at " + path + " (not submitted)")
		}
	}
	return errors.ErrOperationCanceled
}
