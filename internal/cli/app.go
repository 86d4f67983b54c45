package cli

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/mrz1836/minutes/internal/capture"
	"github.com/mrz1836/minutes/internal/client"
	"github.com/mrz1836/minutes/internal/config"
	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/history"
	"github.com/mrz1836/minutes/internal/logging"
	"github.com/mrz1836/minutes/internal/notify"
	"github.com/mrz1836/minutes/internal/recorder"
	"github.com/mrz1836/minutes/internal/telemetry"
)

// newRecordingDevice builds the capture backend. Tests replace it with a fake.
var newRecordingDevice = recorder.NewDevice //nolint:gochecknoglobals // test seam for the capture backend

// app holds the components wired for one command invocation.
type app struct {
	cfg          *config.Config
	history      *history.History
	orchestrator *capture.Orchestrator
	session      *recorder.Session

	closers []func(context.Context) error
}

// appOptions selects optional parts of the wiring.
type appOptions struct {
	// recording wires a capture device and session.
	recording bool
	// recordingBackend overrides recording.backend.
	recordingBackend string
	// notifyWriter receives result-ready notifications.
	notifyWriter io.Writer
}

// newApp loads configuration and wires history, client, notifier and the
// orchestrator. Call Close when done.
func newApp(ctx context.Context, flags *GlobalFlags, opts appOptions) (*app, error) {
	cfg, err := config.LoadWithOverrides(ctx, &config.Overrides{
		BaseURL:          flags.Server,
		RecordingBackend: opts.recordingBackend,
		HistoryBackend:   flags.HistoryBackend,
	})
	if err != nil {
		return nil, errors.NewExitCode2Error(err)
	}
	logging.RegisterSecret(cfg.Server.AuthToken)

	a := &app{cfg: cfg}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	kv, err := a.openKV()
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.history = history.New(kv, history.WithCapacity(cfg.History.Capacity))
	a.history.Load(ctx)

	processor := client.New(cfg.Server.BaseURL,
		client.WithAuthToken(cfg.Server.AuthToken),
		client.WithTimeouts(cfg.Server.AudioTimeout, cfg.Server.ImageTimeout),
	)

	writer := opts.notifyWriter
	if writer == nil {
		writer = io.Discard
	}
	notifier := notify.NewWithWriter(notify.Config{
		BellEnabled: cfg.Notifications.Bell,
		Quiet:       flags.Quiet || flags.Output == OutputJSON,
		Audio:       cfg.Notifications.Audio,
	}, writer)

	orchestratorOpts := []capture.Option{capture.WithNotifier(notifier)}
	if opts.recording {
		device, err := newRecordingDevice(cfg.Recording)
		if err != nil {
			_ = a.Close(ctx)
			return nil, errors.NewExitCode2Error(err)
		}
		a.session = recorder.NewSession(cfg.Recording.Dir, device)
		orchestratorOpts = append(orchestratorOpts, capture.WithRecorder(a.session))
	}

	a.orchestrator = capture.New(processor, a.history, orchestratorOpts...)
	return a, nil
}

// openKV opens the history store selected by history.backend.
func (a *app) openKV() (history.KV, error) {
	switch a.cfg.History.Backend {
	case config.HistoryBackendRedis:
		kv := history.NewRedisKV(a.cfg.History.RedisAddr)
		a.closers = append(a.closers, func(context.Context) error { return kv.Close() })
		return kv, nil
	case config.HistoryBackendFile:
		return history.NewFileKV(a.cfg.History.Path), nil
	default:
		return nil, errors.NewExitCode2Error(
			errors.Wrapf(errors.ErrUnknownBackend, "history backend %q", a.cfg.History.Backend))
	}
}

// Close waits for an in-flight submission, then releases stores and flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	if a.orchestrator != nil {
		a.orchestrator.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return stderrors.Join(errs...)
}
