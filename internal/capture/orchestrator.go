// Package capture drives the meeting pipeline: it turns triggers (record,
// stop, upload, images) into a single processing round trip at a time,
// publishes the phase and outcome, and writes successful results to history.
//
// All phase changes go through one mutex-guarded update path. Observers read
// copies through Snapshot or receive them on Subscribe channels.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain, internal/errors, internal/recorder, std lib
//   - MUST NOT import: internal/client, internal/history, internal/tui, internal/cli
package capture

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/recorder"
)

// Recorder is the recording session the orchestrator drives.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() <-chan recorder.Finished
	IsRecording() bool
}

// Processor submits artifacts to the processing service.
type Processor interface {
	SubmitAudio(ctx context.Context, artifact domain.Artifact) (*domain.MeetingResult, error)
	SubmitImages(ctx context.Context, artifact domain.Artifact) (*domain.MeetingResult, error)
}

// Store records successful results.
type Store interface {
	Save(ctx context.Context, result domain.MeetingResult, title string) domain.HistoryItem
}

// Notifier announces ready results.
type Notifier interface {
	ResultReady(kind constants.ArtifactKind) bool
}

// Orchestrator owns the pipeline state machine.
type Orchestrator struct {
	recorder  Recorder
	processor Processor
	store     Store
	notifier  Notifier
	clock     clock.Clock

	mu   sync.Mutex
	snap Snapshot
	// busy is set while a trigger is between its guard and its phase change.
	busy    bool
	subs    map[int]chan Snapshot
	nextSub int
	changed chan struct{}
	flight  sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the recording session. Without one, BeginRecording fails
// with ErrDeviceAcquisition.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithNotifier sets the result-ready notifier.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithClock sets the clock used for history titles.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// New creates an idle Orchestrator.
func New(processor Processor, store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		processor: processor,
		store:     store,
		clock:     clock.RealClock{},
		snap:      Snapshot{Phase: constants.PhaseIdle},
		subs:      make(map[int]chan Snapshot),
		changed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap.clone()
}

// Subscribe returns a channel that receives the current state immediately and
// every later change. A slow reader only misses intermediate states; the most
// recent one is always delivered. Call the returned function to unsubscribe.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	ch <- o.snap.clone()
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// BeginRecording starts a new recording. Idle → Recording.
func (o *Orchestrator) BeginRecording(ctx context.Context) error {
	if err := o.claim(constants.PhaseRecording); err != nil {
		return err
	}

	logger := o.logger(ctx)
	if o.recorder == nil {
		o.release()
		return errors.Wrap(errors.ErrDeviceAcquisition, "no recording device configured")
	}

	if err := o.recorder.Start(ctx); err != nil {
		// The device is unusable; the pipeline stays idle and the caller shows the error.
		logger.Warn().Err(err).Msg("recording not started")
		o.release()
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
	o.setLocked(ctx, Snapshot{
		Phase:  constants.PhaseRecording,
		Status: constants.StatusRecording,
		Kind:   constants.ArtifactAudio,
	})
	return nil
}

// StopRecording ends the recording and submits it. Recording → Processing,
// or Recording → Idle when the device produced no file.
// It returns once processing has started; use Wait for the outcome.
func (o *Orchestrator) StopRecording(ctx context.Context) error {
	if err := o.claimStop(); err != nil {
		return err
	}

	logger := o.logger(ctx)
	finished := o.awaitFinished(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false

	if finished.Path == "" {
		if finished.Err != nil {
			logger.Warn().Err(finished.Err).Msg("recording produced no artifact")
		}
		o.setLocked(ctx, Snapshot{Phase: constants.PhaseIdle})
		return nil
	}

	o.startProcessingLocked(ctx, domain.NewAudioArtifact(finished.Path))
	return nil
}

// DiscardRecording ends the recording without submitting it. Recording → Idle.
// The file stays on disk and its path is returned when one was produced.
func (o *Orchestrator) DiscardRecording(ctx context.Context) (string, error) {
	if err := o.claimStop(); err != nil {
		return "", err
	}

	finished := o.awaitFinished(ctx)
	o.logger(ctx).Info().Str("path", finished.Path).Msg("recording discarded")

	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
	o.setLocked(ctx, Snapshot{Phase: constants.PhaseIdle})
	return finished.Path, finished.Err
}

// claimStop reserves the pipeline for ending the current recording.
func (o *Orchestrator) claimStop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.busy:
		return errors.ErrBusy
	case o.snap.Phase == constants.PhaseIdle:
		return errors.ErrNotRecording
	case o.snap.Phase != constants.PhaseRecording:
		return errors.Wrapf(errors.ErrBusy, "cannot stop recording while %s", o.snap.Phase)
	}
	o.busy = true
	return nil
}

// awaitFinished stops the device and waits for the file to be finalized.
func (o *Orchestrator) awaitFinished(ctx context.Context) recorder.Finished {
	select {
	case finished := <-o.recorder.Stop():
		return finished
	case <-ctx.Done():
		// The session keeps finalizing in the background; the file is abandoned.
		o.logger(ctx).Warn().Err(ctx.Err()).Msg("stopped waiting for recording to finalize")
		return recorder.Finished{}
	}
}

// SubmitExistingFile submits an audio file from disk. Idle → Processing.
func (o *Orchestrator) SubmitExistingFile(ctx context.Context, path string) error {
	if path == "" {
		return errors.Wrap(errors.ErrInvalidArtifact, "empty audio path")
	}
	return o.submit(ctx, domain.NewAudioArtifact(path))
}

// SubmitImages submits photographed pages in order. Idle → Processing.
// An empty selection is a no-op.
func (o *Orchestrator) SubmitImages(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	artifact, err := domain.NewImageArtifactSet(paths)
	if err != nil {
		return err
	}
	return o.submit(ctx, artifact)
}

// Acknowledge clears a published outcome. Succeeded/Failed → Idle.
// It is a no-op when already idle.
func (o *Orchestrator) Acknowledge(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.snap.Phase == constants.PhaseIdle && !o.busy:
		return nil
	case !IsTerminal(o.snap.Phase):
		return errors.Wrapf(errors.ErrBusy, "nothing to acknowledge while %s", o.snap.Phase)
	}
	o.setLocked(ctx, Snapshot{Phase: constants.PhaseIdle})
	return nil
}

// Wait blocks until the pipeline is at rest (Idle, Succeeded or Failed with no
// trigger in progress) and returns that state.
func (o *Orchestrator) Wait(ctx context.Context) (Snapshot, error) {
	for {
		o.mu.Lock()
		snap := o.snap.clone()
		atRest := !o.busy && !snap.Busy()
		changed := o.changed
		o.mu.Unlock()

		if atRest {
			return snap, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Close waits for an in-flight submission to finish.
func (o *Orchestrator) Close() {
	o.flight.Wait()
}

// submit guards and starts a submission from Idle.
func (o *Orchestrator) submit(ctx context.Context, artifact domain.Artifact) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.guardLocked(constants.PhaseProcessing); err != nil {
		return err
	}
	o.startProcessingLocked(ctx, artifact)
	return nil
}

// claim reserves the pipeline for a trigger heading to phase.
func (o *Orchestrator) claim(to constants.PipelinePhase) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.guardLocked(to); err != nil {
		return err
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// guardLocked enforces single flight: triggers are accepted only from Idle.
func (o *Orchestrator) guardLocked(to constants.PipelinePhase) error {
	if o.busy || o.snap.Phase != constants.PhaseIdle {
		return errors.Wrapf(errors.ErrBusy, "pipeline is %s", o.snap.Phase)
	}
	return checkTransition(o.snap.Phase, to)
}

func (o *Orchestrator) startProcessingLocked(ctx context.Context, artifact domain.Artifact) {
	status := constants.StatusTranscribing
	if artifact.Kind == constants.ArtifactImages {
		status = constants.StatusProcessingImages
	}
	o.setLocked(ctx, Snapshot{
		Phase:  constants.PhaseProcessing,
		Status: status,
		Kind:   artifact.Kind,
	})

	o.flight.Add(1)
	go func() {
		defer o.flight.Done()
		o.process(ctx, artifact)
	}()
}

// process runs one round trip and publishes its outcome.
func (o *Orchestrator) process(ctx context.Context, artifact domain.Artifact) {
	logger := o.logger(ctx).With().Str("kind", artifact.Kind.String()).Logger()

	var (
		result *domain.MeetingResult
		err    error
	)
	if artifact.Kind == constants.ArtifactImages {
		result, err = o.processor.SubmitImages(ctx, artifact)
	} else {
		result, err = o.processor.SubmitAudio(ctx, artifact)
	}

	if err != nil {
		logger.Error().Err(err).Msg("processing failed")
		o.mu.Lock()
		o.setLocked(ctx, Snapshot{
			Phase:   constants.PhaseFailed,
			Kind:    artifact.Kind,
			Err:     err,
			Message: err.Error(),
		})
		o.mu.Unlock()
		return
	}

	if result == nil {
		result = &domain.MeetingResult{}
	}
	item := o.store.Save(ctx, *result, domain.TitleFor(artifact.Kind, o.clock.Now()))
	logger.Info().Str("history_id", item.ID).Bool("empty", result.IsEmpty()).Msg("processing succeeded")

	// Notify before publishing so the announcement precedes anything a
	// waiter prints for the result.
	if o.notifier != nil {
		o.notifier.ResultReady(artifact.Kind)
	}

	o.mu.Lock()
	o.setLocked(ctx, Snapshot{
		Phase:  constants.PhaseSucceeded,
		Kind:   artifact.Kind,
		Result: result,
		Item:   &item,
	})
	o.mu.Unlock()
}

// setLocked is the single update path. It validates the transition, stores
// the new state and fans it out.
func (o *Orchestrator) setLocked(ctx context.Context, next Snapshot) {
	if next.Phase != o.snap.Phase {
		if err := checkTransition(o.snap.Phase, next.Phase); err != nil {
			o.logger(ctx).Error().Err(err).Msg("rejected phase change")
			return
		}
	}

	next.Seq = o.snap.Seq + 1
	o.snap = next

	for _, ch := range o.subs {
		publish(ch, next.clone())
	}
	close(o.changed)
	o.changed = make(chan struct{})
}

// publish delivers s, replacing an undelivered older state.
func publish(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

func (o *Orchestrator) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "capture").Logger()
	return &l
}
