package recorder

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mewkiz/flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/minutes/internal/testutil"
)

// scriptedSource replays fixed sample chunks when started.
type scriptedSource struct {
	chunks   [][]int16
	startErr error
	stopped  bool
	closed   bool
}

func (s *scriptedSource) Start(onSamples func([]int16)) error {
	if s.startErr != nil {
		return s.startErr
	}
	for _, c := range s.chunks {
		onSamples(c)
	}
	return nil
}

func (s *scriptedSource) Stop()  { s.stopped = true }
func (s *scriptedSource) Close() { s.closed = true }

func ramp(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(i % 1000) //nolint:gosec // small values
	}
	return out
}

func countSamples(t *testing.T, path string) (uint64, int) {
	t.Helper()
	stream, err := flac.ParseFile(path)
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	var total uint64
	for {
		f, err := stream.ParseNext()
		if stderrors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		total += uint64(f.BlockSize)
	}
	return total, int(stream.Info.NChannels)
}

func newTestNative(src *scriptedSource, channels int) *NativeDevice {
	return &NativeDevice{
		sampleRate: 44100,
		channels:   channels,
		open: func(int, int, string) (pcmSource, error) {
			return src, nil
		},
	}
}

func TestNativeDevice_WritesFLAC(t *testing.T) {
	src := &scriptedSource{chunks: [][]int16{ramp(3000), ramp(3000), ramp(500)}}
	dev := newTestNative(src, 1)
	path := filepath.Join(t.TempDir(), "meeting_1.flac")

	require.NoError(t, dev.Start(context.Background(), path))
	require.NoError(t, dev.Finish())

	assert.True(t, src.stopped)
	assert.True(t, src.closed)

	samples, channels := countSamples(t, path)
	assert.Equal(t, uint64(6500), samples)
	assert.Equal(t, 1, channels)
}

func TestNativeDevice_Stereo(t *testing.T) {
	src := &scriptedSource{chunks: [][]int16{ramp(2 * 5000)}}
	dev := newTestNative(src, 2)
	path := filepath.Join(t.TempDir(), "meeting_2.flac")

	require.NoError(t, dev.Start(context.Background(), path))
	require.NoError(t, dev.Finish())

	samples, channels := countSamples(t, path)
	assert.Equal(t, uint64(5000), samples)
	assert.Equal(t, 2, channels)
}

func TestNativeDevice_NoAudioIsAnError(t *testing.T) {
	dev := newTestNative(&scriptedSource{}, 1)
	path := filepath.Join(t.TempDir(), "meeting_3.flac")

	require.NoError(t, dev.Start(context.Background(), path))
	require.Error(t, dev.Finish())
}

func TestNativeDevice_StartFailure(t *testing.T) {
	src := &scriptedSource{startErr: testutil.ErrMockPermissionDenied}
	dev := newTestNative(src, 1)
	path := filepath.Join(t.TempDir(), "meeting_4.flac")

	require.Error(t, dev.Start(context.Background(), path))
	assert.True(t, src.closed)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "partial file removed")

	require.Error(t, dev.Finish(), "nothing to finish")
}

func TestNativeDevice_OpenFailure(t *testing.T) {
	dev := &NativeDevice{
		sampleRate: 44100,
		channels:   1,
		open: func(int, int, string) (pcmSource, error) {
			return nil, stderrors.New("no server")
		},
	}
	require.Error(t, dev.Start(context.Background(), filepath.Join(t.TempDir(), "x.flac")))
}

func TestNativeDevice_HeaderCountsSamples(t *testing.T) {
	src := &scriptedSource{chunks: [][]int16{ramp(5000)}}
	dev := newTestNative(src, 1)
	path := filepath.Join(t.TempDir(), "meeting_5.flac")

	require.NoError(t, dev.Start(context.Background(), path))
	require.NoError(t, dev.Finish())

	stream, err := flac.ParseFile(path)
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()
	assert.Equal(t, uint64(5000), stream.Info.NSamples)
}

func TestNativeDevice_PushAfterFinishIsIgnored(t *testing.T) {
	src := &scriptedSource{chunks: [][]int16{ramp(4096)}}
	dev := newTestNative(src, 1)
	path := filepath.Join(t.TempDir(), "meeting_6.flac")

	require.NoError(t, dev.Start(context.Background(), path))
	require.NoError(t, dev.Finish())

	assert.NotPanics(t, func() { dev.push(ramp(100)) })
}

func TestNativeDevice_PushDropsWhenQueueFull(t *testing.T) {
	dev := &NativeDevice{samples: make(chan []int16, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		dev.push(ramp(10))
		dev.push(ramp(10))
		dev.push(ramp(10))
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked on a full queue")
	}
	assert.Equal(t, 2, dev.Dropped())
	assert.Len(t, dev.samples, 1)
}
