package recorder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrz1836/minutes/internal/config"
)

const (
	// ffmpegStartupGrace is how long ffmpeg must survive to count as started.
	ffmpegStartupGrace = 500 * time.Millisecond

	// ffmpegStopTimeout bounds the wait for ffmpeg to flush after "q".
	ffmpegStopTimeout = 10 * time.Second

	stderrTailSize = 2048
)

// FFmpegDevice records through an ffmpeg child process writing AAC in an m4a container.
type FFmpegDevice struct {
	binary      string
	inputFormat string
	inputDevice string
	sampleRate  int
	channels    int
	grace       time.Duration

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	done   chan error
	path   string
}

// NewFFmpegDevice creates an ffmpeg backend from the recording config.
func NewFFmpegDevice(cfg config.RecordingConfig) *FFmpegDevice {
	return &FFmpegDevice{
		binary:      cfg.FFmpegPath,
		inputFormat: cfg.InputFormat,
		inputDevice: cfg.InputDevice,
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		grace:       ffmpegStartupGrace,
	}
}

// Ext implements Device.
func (d *FFmpegDevice) Ext() string { return ".m4a" }

// Name implements Device.
func (d *FFmpegDevice) Name() string { return "ffmpeg" }

// Args returns the ffmpeg command line used to record into path.
func (d *FFmpegDevice) Args(path string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", d.inputFormat,
		"-i", d.inputDevice,
		"-ac", strconv.Itoa(d.channels),
		"-ar", strconv.Itoa(d.sampleRate),
		"-c:a", "aac",
		path,
	}
}

// Start implements Device. ffmpeg exiting within the startup grace period
// (missing device, permission denied) is reported as a start failure.
func (d *FFmpegDevice) Start(ctx context.Context, path string) error {
	if d.cmd != nil {
		return fmt.Errorf("ffmpeg already running")
	}

	// Not bound to ctx: the recording must outlive a canceled trigger and
	// is stopped with "q" so the container is finalized.
	cmd := exec.Command(d.binary, d.Args(path)...) //#nosec G204 -- binary and args come from configuration
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stderr := &tailBuffer{limit: stderrTailSize}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", d.binary, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return fmt.Errorf("ffmpeg exited during startup: %w: %s", exitError(err), stderr.String())
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case <-time.After(d.grace):
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stderr = stderr
	d.done = done
	d.path = path
	return nil
}

// Finish implements Device. It asks ffmpeg to quit and waits for the file.
func (d *FFmpegDevice) Finish() error {
	if d.cmd == nil {
		return fmt.Errorf("ffmpeg not running")
	}
	defer d.reset()

	_, _ = io.WriteString(d.stdin, "q\n")
	_ = d.stdin.Close()

	var waitErr error
	select {
	case waitErr = <-d.done:
	case <-time.After(ffmpegStopTimeout):
		_ = d.cmd.Process.Kill()
		waitErr = <-d.done
	}

	info, statErr := os.Stat(d.path)
	if statErr != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced no audio: %w: %s", exitError(waitErr), d.stderr.String())
	}
	return nil
}

func (d *FFmpegDevice) reset() {
	d.cmd = nil
	d.stdin = nil
	d.done = nil
	d.path = ""
}

func exitError(err error) error {
	if err == nil {
		return fmt.Errorf("exit status 0")
	}
	return err
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}

var _ Device = (*FFmpegDevice)(nil)
