package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/minutes/internal/capture"
	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/constants"
)

func recording() SnapshotMsg {
	return SnapshotMsg{Phase: constants.PhaseRecording, Status: constants.StatusRecording, Kind: constants.ArtifactAudio}
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestRecordModel_FullFlow(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()

	c := clock.NewFake(time.Date(2025, time.March, 4, 14, 0, 0, 0, time.UTC))
	stops := 0
	m := NewRecordModel(make(chan capture.Snapshot), func() error { stops++; return nil }, c)
	require.NotNil(t, m.Init())

	m.Update(recording())
	c.Advance(75 * time.Second)
	view := m.View()
	assert.Contains(t, view, "Recording...")
	assert.Contains(t, view, "1:15")
	assert.Contains(t, view, "enter to stop")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, StopDoneMsg{}, cmd())
	assert.Equal(t, 1, stops)
	assert.Contains(t, m.View(), "stopping...")

	// A second stop key while stopping does nothing.
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Nil(t, cmd)

	m.Update(SnapshotMsg{Phase: constants.PhaseProcessing, Status: constants.StatusTranscribing})
	assert.Contains(t, m.View(), "Transcribing...")

	_, cmd = m.Update(SnapshotMsg{Phase: constants.PhaseSucceeded})
	assert.True(t, isQuit(t, cmd))
	assert.Empty(t, m.View())
	assert.Equal(t, constants.PhaseSucceeded, m.Snapshot().Phase)
	assert.False(t, m.Aborted())
	assert.NoError(t, m.Err())
}

func TestRecordModel_StopWithoutArtifactQuitsOnIdle(t *testing.T) {
	m := NewRecordModel(make(chan capture.Snapshot), func() error { return nil }, nil)

	m.Update(SnapshotMsg{Phase: constants.PhaseIdle})
	assert.False(t, m.done, "idle before a stop is the initial state")

	m.Update(recording())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(SnapshotMsg{Phase: constants.PhaseIdle})
	assert.True(t, isQuit(t, cmd))
}

func TestRecordModel_Abort(t *testing.T) {
	m := NewRecordModel(make(chan capture.Snapshot), func() error { return nil }, nil)
	m.Update(recording())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(t, cmd))
	assert.True(t, m.Aborted())
}

func TestRecordModel_StopError(t *testing.T) {
	m := NewRecordModel(make(chan capture.Snapshot), func() error { return nil }, nil)
	m.Update(recording())

	stopErr := fmt.Errorf("device gone")
	_, cmd := m.Update(StopDoneMsg{Err: stopErr})
	assert.True(t, isQuit(t, cmd))
	assert.Equal(t, stopErr, m.Err())
}

func TestRecordModel_FailedQuits(t *testing.T) {
	m := NewRecordModel(make(chan capture.Snapshot), func() error { return nil }, nil)
	_, cmd := m.Update(SnapshotMsg{Phase: constants.PhaseFailed, Message: "network request failed"})
	assert.True(t, isQuit(t, cmd))
	assert.Equal(t, "network request failed", m.Snapshot().Message)
}

func TestRecordModel_WaitForSnapshot(t *testing.T) {
	updates := make(chan capture.Snapshot, 1)
	m := NewRecordModel(updates, func() error { return nil }, nil)

	updates <- capture.Snapshot{Seq: 7, Phase: constants.PhaseRecording}
	msg := m.waitForSnapshot()()
	assert.Equal(t, SnapshotMsg{Seq: 7, Phase: constants.PhaseRecording}, msg)

	close(updates)
	assert.Equal(t, snapshotsClosedMsg{}, m.waitForSnapshot()())
}
