package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Spinner is a running progress indicator.
type Spinner interface {
	// Update changes the message.
	Update(msg string)
	// Stop ends the animation and clears the line.
	Stop()
}

// lockedWriter guards w against concurrent writes.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// SpinnerInterval is the frame period.
const SpinnerInterval = 100 * time.Millisecond

// ElapsedTimeThreshold is how long a message shows before the elapsed time
// is appended to it. Audio processing can take minutes.
const ElapsedTimeThreshold = 10 * time.Second

const clearLine = "\r\033[K"

// TerminalSpinner animates a braille spinner followed by a message.
type TerminalSpinner struct {
	w      *lockedWriter
	styles *OutputStyles
	frames []string
	width  func() int

	mu      sync.Mutex
	message string
	started time.Time
	running bool
	stop    chan struct{}
	exited  chan struct{}
}

// NewTerminalSpinner returns a stopped spinner that writes to w.
func NewTerminalSpinner(w io.Writer) *TerminalSpinner {
	return &TerminalSpinner{
		w:      &lockedWriter{w: w},
		styles: NewOutputStyles(),
		frames: spinner.MiniDot.Frames,
		width:  terminalWidth,
	}
}

// Start begins the animation. Calling Start while running only updates the message.
func (s *TerminalSpinner) Start(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running {
		return
	}
	s.started = time.Now()
	s.running = true
	s.stop = make(chan struct{})
	s.exited = make(chan struct{})
	go s.animate(ctx, s.stop, s.exited)
}

// UpdateMessage swaps the message shown on the next frame.
func (s *TerminalSpinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Safe to call more than once.
func (s *TerminalSpinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, exited := s.stop, s.exited
	s.mu.Unlock()

	close(stop)
	<-exited
}

func (s *TerminalSpinner) animate(ctx context.Context, stop <-chan struct{}, exited chan<- struct{}) {
	ticker := time.NewTicker(SpinnerInterval)
	defer func() {
		ticker.Stop()
		_, _ = io.WriteString(s.w, clearLine)
		close(exited)
	}()

	for frame := 0; ; frame++ {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.draw(frame)
		}
	}
}

func (s *TerminalSpinner) draw(frame int) {
	s.mu.Lock()
	msg := s.message
	if elapsed := time.Since(s.started); elapsed > ElapsedTimeThreshold {
		msg = fmt.Sprintf("%s (%s)", msg, FormatElapsed(elapsed))
	}
	s.mu.Unlock()

	// Leave room for the frame, a space and one spare column.
	if room := s.width() - 3; room > 0 {
		msg = runewidth.Truncate(msg, room, "...")
	}
	icon := s.styles.Info.Render(s.frames[frame%len(s.frames)])
	_, _ = fmt.Fprintf(s.w, "%s%s %s", clearLine, icon, msg)
}

// terminalWidth returns the stderr terminal width, or 80 when unknown.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd())) //nolint:gosec // G115: file descriptors fit in int
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// SpinnerAdapter ties a TerminalSpinner to its own cancelable context.
type SpinnerAdapter struct {
	spinner *TerminalSpinner
	cancel  context.CancelFunc
}

// NewSpinnerAdapter starts a spinner on w with msg.
func NewSpinnerAdapter(ctx context.Context, w io.Writer, msg string) *SpinnerAdapter {
	ctx, cancel := context.WithCancel(ctx)
	s := NewTerminalSpinner(w)
	s.Start(ctx, msg)
	return &SpinnerAdapter{spinner: s, cancel: cancel}
}

// Update changes the spinner message.
func (a *SpinnerAdapter) Update(msg string) {
	a.spinner.UpdateMessage(msg)
}

// Stop terminates the spinner.
func (a *SpinnerAdapter) Stop() {
	a.spinner.Stop()
	a.cancel()
}

// NoopSpinner is a no-op spinner for JSON and non-TTY output.
type NoopSpinner struct{}

// Update is a no-op for NoopSpinner.
func (*NoopSpinner) Update(_ string) {}

// Stop is a no-op for NoopSpinner.
func (*NoopSpinner) Stop() {}
