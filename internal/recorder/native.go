package recorder

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/mrz1836/minutes/internal/config"
)

const (
	flacBlockSize     = 4096
	flacBitsPerSample = 16
	// sampleQueueDepth is the number of capture callbacks buffered ahead of the
	// encoder. When it is full further callbacks are dropped, never blocked.
	sampleQueueDepth = 256
)

// pcmSource delivers interleaved signed 16-bit samples from a capture device.
type pcmSource interface {
	Start(onSamples func([]int16)) error
	Stop()
	Close()
}

// openSourceFunc opens the platform capture device.
type openSourceFunc func(sampleRate, channels int, device string) (pcmSource, error)

// NativeDevice records from the system audio API into a FLAC file without
// external tools.
type NativeDevice struct {
	sampleRate int
	channels   int
	device     string
	open       openSourceFunc

	src  pcmSource
	file *os.File
	done chan error

	// mu orders the capture callback against closing the queue.
	mu      sync.Mutex
	samples chan []int16
	stopped bool
	dropped int
}

// NewNativeDevice creates a native backend from the recording config.
func NewNativeDevice(cfg config.RecordingConfig) *NativeDevice {
	return &NativeDevice{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		device:     cfg.InputDevice,
		open:       openPlatformSource,
	}
}

// Ext implements Device.
func (d *NativeDevice) Ext() string { return ".flac" }

// Name implements Device.
func (d *NativeDevice) Name() string { return "native" }

// Start implements Device.
func (d *NativeDevice) Start(_ context.Context, path string) error {
	if d.src != nil {
		return fmt.Errorf("native capture already running")
	}

	src, err := d.open(d.sampleRate, d.channels, d.device)
	if err != nil {
		return fmt.Errorf("open capture device: %w", err)
	}

	file, err := os.Create(path) //#nosec G304 -- path is constructed by the session
	if err != nil {
		src.Close()
		return fmt.Errorf("create recording file: %w", err)
	}

	enc, err := flac.NewEncoder(encoderSink{file}, &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(d.sampleRate), //nolint:gosec // validated positive by config
		NChannels:     uint8(d.channels),    //nolint:gosec // validated 1..2 by config
		BitsPerSample: flacBitsPerSample,
	})
	if err != nil {
		src.Close()
		_ = file.Close()
		return fmt.Errorf("creating flac encoder: %w", err)
	}

	samples := make(chan []int16, sampleQueueDepth)
	d.mu.Lock()
	d.samples = samples
	d.stopped = false
	d.dropped = 0
	d.mu.Unlock()
	d.done = make(chan error, 1)
	w := &flacWriter{enc: enc, sampleRate: d.sampleRate, channels: d.channels}
	go func() { d.done <- w.run(samples) }()

	if err := src.Start(d.push); err != nil {
		d.closeQueue()
		<-d.done
		src.Close()
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("start capture: %w", err)
	}

	d.src = src
	d.file = file
	return nil
}

// push is the capture callback. It copies because drivers reuse their
// buffers, and it never blocks the driver thread: a callback arriving after
// Finish is ignored and one arriving while the queue is full is dropped.
func (d *NativeDevice) push(samples []int16) {
	if len(samples) == 0 {
		return
	}
	chunk := append([]int16(nil), samples...)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	select {
	case d.samples <- chunk:
	default:
		d.dropped++
	}
}

// closeQueue stops accepting callbacks and lets the encoder drain.
func (d *NativeDevice) closeQueue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.stopped {
		d.stopped = true
		close(d.samples)
	}
}

// Dropped reports how many capture callbacks of the last recording were
// discarded because the encoder fell behind.
func (d *NativeDevice) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Finish implements Device.
func (d *NativeDevice) Finish() error {
	if d.src == nil {
		return fmt.Errorf("native capture not running")
	}

	d.src.Stop()
	d.closeQueue()
	d.src.Close()

	// The encoder never closes the file; this is its only close.
	encErr := <-d.done
	closeErr := d.file.Close()
	d.src = nil
	d.file = nil

	if encErr != nil {
		return encErr
	}
	return closeErr
}

// encoderSink hands the file to the FLAC encoder as a WriteSeeker only, so
// the encoder can patch the stream header on Close but cannot close the file.
type encoderSink struct {
	f *os.File
}

func (s encoderSink) Write(p []byte) (int, error) { return s.f.Write(p) }

func (s encoderSink) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

// flacWriter groups interleaved samples into fixed-size FLAC frames.
type flacWriter struct {
	enc        *flac.Encoder
	sampleRate int
	channels   int
	pending    []int16
	written    int
}

func (w *flacWriter) run(samples <-chan []int16) error {
	var firstErr error
	block := flacBlockSize * w.channels
	for chunk := range samples {
		if firstErr != nil {
			continue // drain so the capture callback never blocks
		}
		w.pending = append(w.pending, chunk...)
		for len(w.pending) >= block && firstErr == nil {
			firstErr = w.writeFrame(w.pending[:block])
			w.pending = w.pending[block:]
		}
	}

	if firstErr == nil {
		// Drop a trailing partial sample frame.
		tail := len(w.pending) - len(w.pending)%w.channels
		if tail > 0 {
			firstErr = w.writeFrame(w.pending[:tail])
		}
	}
	if err := w.enc.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing flac encoder: %w", err)
	}
	if firstErr == nil && w.written == 0 {
		firstErr = fmt.Errorf("no audio captured")
	}
	return firstErr
}

func (w *flacWriter) writeFrame(interleaved []int16) error {
	n := len(interleaved) / w.channels
	subframes := make([]*frame.Subframe, w.channels)
	for ch := range subframes {
		samples := make([]int32, n)
		for i := range n {
			samples[i] = int32(interleaved[i*w.channels+ch])
		}
		subframes[ch] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  n,
		}
	}

	channels := frame.ChannelsMono
	if w.channels == 2 {
		channels = frame.ChannelsLR
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(n),            //nolint:gosec // at most flacBlockSize
			SampleRate:    uint32(w.sampleRate), //nolint:gosec // validated positive by config
			Channels:      channels,
			BitsPerSample: flacBitsPerSample,
		},
		Subframes: subframes,
	}
	if err := w.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	w.written += n
	return nil
}

var _ Device = (*NativeDevice)(nil)
