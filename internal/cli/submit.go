package cli

import (
	"context"
	"io"

	"github.com/mrz1836/minutes/internal/capture"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/tui"
)

// trigger starts one pipeline run.
type trigger func(ctx context.Context) error

// outcomeView renders pipeline outcomes for one command.
type outcomeView struct {
	w      io.Writer
	out    tui.Output
	format string
}

func newOutcomeView(w io.Writer, format string) *outcomeView {
	return &outcomeView{w: w, out: tui.NewOutput(w, format), format: format}
}

// runSubmission fires start, shows progress until the pipeline is at rest and
// returns the outcome. The outcome is acknowledged before returning so the
// pipeline is idle again.
func runSubmission(ctx context.Context, a *app, view *outcomeView, start trigger) (capture.Snapshot, error) {
	if err := start(ctx); err != nil {
		return capture.Snapshot{}, err
	}
	return awaitOutcome(ctx, a, view)
}

// awaitOutcome shows progress while the in-flight run finishes, then settles it.
func awaitOutcome(ctx context.Context, a *app, view *outcomeView) (capture.Snapshot, error) {
	spinner := view.out.Spinner(ctx, a.orchestrator.Snapshot().Status)
	snap, err := settle(ctx, a)
	spinner.Stop()
	return snap, err
}

// settle waits until the pipeline is at rest and acknowledges the outcome.
func settle(ctx context.Context, a *app) (capture.Snapshot, error) {
	snap, err := a.orchestrator.Wait(ctx)
	if err != nil {
		return snap, err
	}
	if ackErr := a.orchestrator.Acknowledge(ctx); ackErr != nil {
		logger := GetLogger()
		logger.Debug().Err(ackErr).Msg("acknowledge failed")
	}
	return snap, nil
}

// render prints an outcome. A failure is returned as the command error so it
// is printed once with its suggested action.
func (v *outcomeView) render(snap capture.Snapshot) error {
	switch snap.Phase {
	case constants.PhaseSucceeded:
		if v.format == OutputJSON {
			return v.out.JSON(snap.Item)
		}
		styled := tui.HasColorSupport() && isTerminalWriter(v.w)
		tui.NewResultRenderer(styled, tui.DefaultWrapWidth).Write(v.w, *snap.Result, snap.Item.Title)
		v.out.Success("Saved to history (minutes history show 0)")
		return nil
	case constants.PhaseFailed:
		return snap.Err
	default:
		v.out.Info("No recording was captured.")
		return nil
	}
}
