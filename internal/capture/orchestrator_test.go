package capture

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/minutes/internal/client"
	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/errors"
	"github.com/mrz1836/minutes/internal/notify"
	"github.com/mrz1836/minutes/internal/recorder"
	"github.com/mrz1836/minutes/internal/testutil"
)

type submitFunc func(ctx context.Context, a domain.Artifact) (*domain.MeetingResult, error)

type fakeProcessor struct {
	mu     sync.Mutex
	audio  submitFunc
	images submitFunc
	calls  []domain.Artifact
}

func okResult(label string) submitFunc {
	return func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		return &domain.MeetingResult{Minutes: []string{label}}, nil
	}
}

func (f *fakeProcessor) record(a domain.Artifact) {
	f.mu.Lock()
	f.calls = append(f.calls, a)
	f.mu.Unlock()
}

func (f *fakeProcessor) SubmitAudio(ctx context.Context, a domain.Artifact) (*domain.MeetingResult, error) {
	f.record(a)
	return f.audio(ctx, a)
}

func (f *fakeProcessor) SubmitImages(ctx context.Context, a domain.Artifact) (*domain.MeetingResult, error) {
	f.record(a)
	return f.images(ctx, a)
}

func (f *fakeProcessor) Calls() []domain.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Artifact(nil), f.calls...)
}

type fakeStore struct {
	mu    sync.Mutex
	saved []domain.HistoryItem
}

func (s *fakeStore) Save(_ context.Context, r domain.MeetingResult, title string) domain.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := domain.HistoryItem{ID: title, Title: title, Result: r}
	s.saved = append(s.saved, item)
	return item
}

func (s *fakeStore) Saved() []domain.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.HistoryItem(nil), s.saved...)
}

var testTime = time.Date(2026, 3, 4, 14, 15, 0, 0, time.UTC)

func newTestOrchestrator(t *testing.T, p Processor, opts ...Option) (*Orchestrator, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	o := New(p, store, append([]Option{WithClock(clock.NewFake(testTime))}, opts...)...)
	t.Cleanup(o.Close)
	return o, store
}

func wait(t *testing.T, o *Orchestrator) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := o.Wait(ctx)
	require.NoError(t, err)
	return snap
}

func TestRecordingFlow_Succeeds(t *testing.T) {
	proc := &fakeProcessor{audio: okResult("a")}
	session := recorder.NewSession(t.TempDir(), recorder.NewFakeDevice([]byte("audio")))
	o, store := newTestOrchestrator(t, proc, WithRecorder(session))

	require.NoError(t, o.BeginRecording(context.Background()))
	snap := o.Snapshot()
	assert.Equal(t, constants.PhaseRecording, snap.Phase)
	assert.Equal(t, "Recording...", snap.Status)
	assert.True(t, session.IsRecording())

	require.NoError(t, o.StopRecording(context.Background()))
	snap = wait(t, o)

	assert.Equal(t, constants.PhaseSucceeded, snap.Phase)
	assert.Empty(t, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, []string{"a"}, snap.Result.Minutes)
	require.NotNil(t, snap.Item)
	assert.Equal(t, "Meeting — Mar 4, 2:15 PM", snap.Item.Title)

	calls := proc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, constants.ArtifactAudio, calls[0].Kind)
	assert.Equal(t, ".m4a", filepath.Ext(calls[0].Paths[0]))
	require.Len(t, store.Saved(), 1)

	require.NoError(t, o.Acknowledge(context.Background()))
	assert.Equal(t, constants.PhaseIdle, o.Snapshot().Phase)
}

func TestStopRecording_NoArtifactReturnsToIdle(t *testing.T) {
	dev := recorder.NewFakeDevice(nil)
	dev.FinishErr = testutil.ErrMockDeviceLost
	proc := &fakeProcessor{audio: okResult("unused")}
	o, store := newTestOrchestrator(t, proc, WithRecorder(recorder.NewSession(t.TempDir(), dev)))

	require.NoError(t, o.BeginRecording(context.Background()))
	require.NoError(t, o.StopRecording(context.Background()))

	snap := wait(t, o)
	assert.Equal(t, constants.PhaseIdle, snap.Phase)
	assert.Empty(t, snap.Status)
	assert.Nil(t, snap.Err)
	assert.Empty(t, proc.Calls())
	assert.Empty(t, store.Saved())
}

func TestStopRecording_WhenIdle(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProcessor{})
	require.ErrorIs(t, o.StopRecording(context.Background()), errors.ErrNotRecording)
}

func TestDiscardRecording_KeepsFileWithoutSubmitting(t *testing.T) {
	proc := &fakeProcessor{audio: okResult("unused")}
	session := recorder.NewSession(t.TempDir(), recorder.NewFakeDevice([]byte("audio")))
	o, store := newTestOrchestrator(t, proc, WithRecorder(session))

	require.NoError(t, o.BeginRecording(context.Background()))
	path, err := o.DiscardRecording(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, constants.PhaseIdle, o.Snapshot().Phase)
	assert.False(t, session.IsRecording())
	assert.Empty(t, proc.Calls())
	assert.Empty(t, store.Saved())

	_, err = o.DiscardRecording(context.Background())
	require.ErrorIs(t, err, errors.ErrNotRecording)
}

func TestBeginRecording_DeviceFailureStaysIdle(t *testing.T) {
	dev := recorder.NewFakeDevice([]byte("x"))
	dev.StartErr = testutil.ErrMockPermissionDenied
	session := recorder.NewSession(t.TempDir(), dev)
	o, _ := newTestOrchestrator(t, &fakeProcessor{audio: okResult("file")}, WithRecorder(session))

	err := o.BeginRecording(context.Background())
	require.ErrorIs(t, err, errors.ErrDeviceAcquisition)
	assert.Equal(t, constants.PhaseIdle, o.Snapshot().Phase)

	// The pipeline still accepts other triggers.
	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/talk.m4a"))
	assert.Equal(t, constants.PhaseSucceeded, wait(t, o).Phase)
}

func TestBeginRecording_WithoutRecorder(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProcessor{})
	require.ErrorIs(t, o.BeginRecording(context.Background()), errors.ErrDeviceAcquisition)
	assert.Equal(t, constants.PhaseIdle, o.Snapshot().Phase)
}

func TestSubmitExistingFile_Status(t *testing.T) {
	gate := make(chan struct{})
	proc := &fakeProcessor{audio: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		<-gate
		return &domain.MeetingResult{}, nil
	}}
	o, store := newTestOrchestrator(t, proc)

	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))
	snap := o.Snapshot()
	assert.Equal(t, constants.PhaseProcessing, snap.Phase)
	assert.Equal(t, "Transcribing...", snap.Status)

	close(gate)
	snap = wait(t, o)
	assert.Equal(t, constants.PhaseSucceeded, snap.Phase)
	assert.True(t, snap.Result.IsEmpty(), "an empty result is still a success")
	assert.Len(t, store.Saved(), 1)
}

func TestSubmitImages_StatusAndNotification(t *testing.T) {
	gate := make(chan struct{})
	proc := &fakeProcessor{
		images: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
			<-gate
			return &domain.MeetingResult{Minutes: []string{"page"}}, nil
		},
		audio: okResult("audio"),
	}
	var out bytes.Buffer
	n := notify.NewWithWriter(notify.DefaultConfig(), &out)
	o, store := newTestOrchestrator(t, proc, WithNotifier(n))

	require.NoError(t, o.SubmitImages(context.Background(), []string{"/tmp/1.jpg", "/tmp/2.jpg"}))
	assert.Equal(t, "Processing images...", o.Snapshot().Status)

	close(gate)
	snap := wait(t, o)
	assert.Equal(t, constants.PhaseSucceeded, snap.Phase)
	assert.Equal(t, "Image Notes — Mar 4, 2:15 PM", store.Saved()[0].Title)
	assert.Contains(t, out.String(), "Meeting Ready ✓")

	// The audio flow does not notify by default.
	out.Reset()
	require.NoError(t, o.Acknowledge(context.Background()))
	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))
	assert.Equal(t, constants.PhaseSucceeded, wait(t, o).Phase)
	assert.Empty(t, out.String())
}

// phaseNotifier records the published phase at the moment it is notified.
type phaseNotifier struct {
	o    *Orchestrator
	seen chan constants.PipelinePhase
}

func (n *phaseNotifier) ResultReady(constants.ArtifactKind) bool {
	n.seen <- n.o.Snapshot().Phase
	return true
}

func TestProcess_NotifiesBeforePublishingSuccess(t *testing.T) {
	n := &phaseNotifier{seen: make(chan constants.PipelinePhase, 1)}
	o, _ := newTestOrchestrator(t, &fakeProcessor{images: okResult("page")}, WithNotifier(n))
	n.o = o

	require.NoError(t, o.SubmitImages(context.Background(), []string{"/tmp/1.jpg"}))
	assert.Equal(t, constants.PhaseSucceeded, wait(t, o).Phase)
	assert.Equal(t, constants.PhaseProcessing, <-n.seen)
}

func TestSubmitImages_EmptyIsNoop(t *testing.T) {
	proc := &fakeProcessor{}
	o, _ := newTestOrchestrator(t, proc)

	require.NoError(t, o.SubmitImages(context.Background(), nil))
	snap := o.Snapshot()
	assert.Equal(t, constants.PhaseIdle, snap.Phase)
	assert.Zero(t, snap.Seq)
	assert.Empty(t, proc.Calls())
}

func TestSubmitImages_TooMany(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProcessor{})
	paths := make([]string, constants.MaxImages+1)
	for i := range paths {
		paths[i] = "/tmp/p.jpg"
	}
	require.ErrorIs(t, o.SubmitImages(context.Background(), paths), errors.ErrTooManyImages)
	assert.Equal(t, constants.PhaseIdle, o.Snapshot().Phase)
}

func TestSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	proc := &fakeProcessor{audio: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		<-gate
		return &domain.MeetingResult{}, nil
	}, images: okResult("img")}
	session := recorder.NewSession(t.TempDir(), recorder.NewFakeDevice([]byte("x")))
	o, _ := newTestOrchestrator(t, proc, WithRecorder(session))

	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))

	require.ErrorIs(t, o.SubmitExistingFile(context.Background(), "/tmp/b.m4a"), errors.ErrBusy)
	require.ErrorIs(t, o.SubmitImages(context.Background(), []string{"/tmp/1.jpg"}), errors.ErrBusy)
	require.ErrorIs(t, o.BeginRecording(context.Background()), errors.ErrBusy)
	require.ErrorIs(t, o.StopRecording(context.Background()), errors.ErrBusy)
	require.ErrorIs(t, o.Acknowledge(context.Background()), errors.ErrBusy)
	assert.False(t, session.IsRecording())

	close(gate)
	assert.Equal(t, constants.PhaseSucceeded, wait(t, o).Phase)
	require.Len(t, proc.Calls(), 1)

	// An unacknowledged outcome also blocks new triggers.
	require.ErrorIs(t, o.SubmitExistingFile(context.Background(), "/tmp/c.m4a"), errors.ErrBusy)
}

func TestConcurrentTriggers_OnlyOneWins(t *testing.T) {
	gate := make(chan struct{})
	proc := &fakeProcessor{audio: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		<-gate
		return &domain.MeetingResult{}, nil
	}}
	o, _ := newTestOrchestrator(t, proc)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if o.SubmitExistingFile(context.Background(), "/tmp/a.m4a") == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	close(gate)
	wait(t, o)

	assert.Equal(t, int32(1), accepted.Load())
	assert.Len(t, proc.Calls(), 1)
}

func TestFailure_PublishesMessage(t *testing.T) {
	proc := &fakeProcessor{audio: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		return nil, errors.Join(testutil.ErrMockConnectionReset, errors.ErrNetwork)
	}}
	o, store := newTestOrchestrator(t, proc)

	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))
	snap := wait(t, o)

	assert.Equal(t, constants.PhaseFailed, snap.Phase)
	assert.Empty(t, snap.Status)
	require.ErrorIs(t, snap.Err, errors.ErrNetwork)
	assert.Contains(t, snap.Message, "connection reset")
	assert.Nil(t, snap.Result)
	assert.Empty(t, store.Saved(), "failures are not written to history")
}

func TestTimeoutThenAccept(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-release:
			}
			return
		}
		_, _ = io.WriteString(w, `{"minutes":["a","b"]}`)
	}))
	defer srv.Close()
	defer close(release)

	audio := filepath.Join(t.TempDir(), "talk.m4a")
	require.NoError(t, os.WriteFile(audio, []byte("audio"), 0o600))

	c := client.New(srv.URL, client.WithTimeouts(100*time.Millisecond, 100*time.Millisecond))
	o, store := newTestOrchestrator(t, c)

	require.NoError(t, o.SubmitExistingFile(context.Background(), audio))
	snap := wait(t, o)
	assert.Equal(t, constants.PhaseFailed, snap.Phase)
	require.ErrorIs(t, snap.Err, errors.ErrNetwork)
	require.ErrorIs(t, snap.Err, errors.ErrRequestTimeout)

	require.NoError(t, o.Acknowledge(context.Background()))
	require.NoError(t, o.SubmitExistingFile(context.Background(), audio))
	snap = wait(t, o)
	assert.Equal(t, constants.PhaseSucceeded, snap.Phase)
	assert.Equal(t, []string{"a", "b"}, snap.Result.Minutes)
	assert.Len(t, store.Saved(), 1)
}

func TestSubscribe_ReceivesChanges(t *testing.T) {
	gate := make(chan struct{})
	proc := &fakeProcessor{images: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		<-gate
		return &domain.MeetingResult{}, nil
	}}
	o, _ := newTestOrchestrator(t, proc)

	ch, unsubscribe := o.Subscribe()
	defer unsubscribe()

	first := <-ch
	assert.Equal(t, constants.PhaseIdle, first.Phase)

	require.NoError(t, o.SubmitImages(context.Background(), []string{"/tmp/1.jpg"}))
	processing := <-ch
	assert.Equal(t, constants.PhaseProcessing, processing.Phase)
	assert.Equal(t, "Processing images...", processing.Status)

	close(gate)
	select {
	case done := <-ch:
		assert.Equal(t, constants.PhaseSucceeded, done.Phase)
		assert.Greater(t, done.Seq, processing.Seq)
	case <-time.After(5 * time.Second):
		t.Fatal("no update after processing finished")
	}
}

func TestSubscribe_SlowReaderGetsLatest(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProcessor{audio: okResult("a")})

	ch, unsubscribe := o.Subscribe()
	defer unsubscribe()

	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))
	wait(t, o)

	latest := <-ch
	assert.Equal(t, constants.PhaseSucceeded, latest.Phase)
}

func TestSnapshot_IsCopy(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProcessor{audio: okResult("original")})
	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))
	snap := wait(t, o)

	snap.Result.Minutes[0] = "changed"
	assert.Equal(t, "original", o.Snapshot().Result.Minutes[0])
}

func TestAcknowledge_IdleIsNoop(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeProcessor{})
	require.NoError(t, o.Acknowledge(context.Background()))
	assert.Zero(t, o.Snapshot().Seq)
}

func TestWait_ContextCanceled(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	proc := &fakeProcessor{audio: func(context.Context, domain.Artifact) (*domain.MeetingResult, error) {
		<-gate
		return &domain.MeetingResult{}, nil
	}}
	o, _ := newTestOrchestrator(t, proc)
	require.NoError(t, o.SubmitExistingFile(context.Background(), "/tmp/a.m4a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	snap, err := o.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, constants.PhaseProcessing, snap.Phase)
}
