package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/minutes/internal/capture"
	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
)

// SnapshotMsg carries a published pipeline snapshot into the model.
type SnapshotMsg capture.Snapshot

// snapshotsClosedMsg signals the subscription was canceled.
type snapshotsClosedMsg struct{}

// StopDoneMsg reports the outcome of the stop request.
type StopDoneMsg struct {
	Err error
}

// RecordModel is the live recording view. It follows orchestrator snapshots
// from Recording through Processing and quits on the outcome.
// It implements tea.Model (Init, Update, View).
type RecordModel struct {
	updates <-chan capture.Snapshot
	stop    func() error
	clock   clock.Clock
	spinner spinner.Model
	styles  *OutputStyles

	snap     capture.Snapshot
	started  time.Time
	stopping bool
	aborted  bool
	done     bool
	err      error
}

// NewRecordModel creates the model. stop is invoked once, off the UI loop,
// when the user asks to end the recording.
func NewRecordModel(updates <-chan capture.Snapshot, stop func() error, c clock.Clock) *RecordModel {
	if c == nil {
		c = clock.RealClock{}
	}
	return &RecordModel{
		updates: updates,
		stop:    stop,
		clock:   c,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorPrimary)),
		),
		styles: NewOutputStyles(),
		snap:   capture.Snapshot{Phase: constants.PhaseIdle},
	}
}

// Init starts the spinner and the snapshot subscription.
func (m *RecordModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot())
}

// Update handles key presses, snapshots and spinner ticks.
func (m *RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ", "s":
			if m.snap.Phase == constants.PhaseRecording && !m.stopping {
				m.stopping = true
				return m, m.stopCmd()
			}
		case "ctrl+c", "q", "esc":
			m.aborted = true
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case StopDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.done = true
			return m, tea.Quit
		}
		return m, nil

	case SnapshotMsg:
		m.snap = capture.Snapshot(msg)
		if m.snap.Phase == constants.PhaseRecording && m.started.IsZero() {
			m.started = m.clock.Now()
		}
		if m.finished() {
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitForSnapshot()

	case snapshotsClosedMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// finished reports whether the flow reached an outcome: a terminal phase,
// or Idle again after a stop that produced no artifact.
func (m *RecordModel) finished() bool {
	switch m.snap.Phase {
	case constants.PhaseSucceeded, constants.PhaseFailed:
		return true
	case constants.PhaseIdle:
		return m.stopping
	case constants.PhaseRecording, constants.PhaseProcessing:
		return false
	default:
		return false
	}
}

// View renders the current phase.
func (m *RecordModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	switch m.snap.Phase {
	case constants.PhaseRecording:
		elapsed := FormatElapsed(m.clock.Now().Sub(m.started))
		indicator := lipgloss.NewStyle().Foreground(PhaseColor(m.snap.Phase)).Bold(true)
		b.WriteString(indicator.Render(PhaseIcon(m.snap.Phase) + " " + m.snap.Status))
		b.WriteString(" " + elapsed + "\n")
		if m.stopping {
			b.WriteString(m.styles.Dim.Render("  stopping..."))
		} else {
			b.WriteString(m.styles.Dim.Render("  enter to stop · ctrl+c to abort"))
		}
	case constants.PhaseProcessing:
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), m.snap.Status)
	default:
		fmt.Fprintf(&b, "%s waiting for the recorder", m.spinner.View())
	}
	b.WriteString("\n")
	return b.String()
}

// Snapshot returns the last snapshot seen.
func (m *RecordModel) Snapshot() capture.Snapshot {
	return m.snap
}

// Aborted reports whether the user abandoned the flow.
func (m *RecordModel) Aborted() bool {
	return m.aborted
}

// Err returns the stop error, if any.
func (m *RecordModel) Err() error {
	return m.err
}

func (m *RecordModel) waitForSnapshot() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return snapshotsClosedMsg{}
		}
		return SnapshotMsg(s)
	}
}

func (m *RecordModel) stopCmd() tea.Cmd {
	stop := m.stop
	return func() tea.Msg {
		return StopDoneMsg{Err: stop()}
	}
}
