package cli

// This file contains test utilities for exercising commands end to end.
// These helpers are only available in test files (*_test.go).

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/minutes/internal/config"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/recorder"
)

// processingService is a fake processing service.
type processingService struct {
	*httptest.Server

	status int
	result domain.MeetingResult
	calls  atomic.Int32
	paths  chan string
}

func newProcessingService(t *testing.T, result domain.MeetingResult) *processingService {
	t.Helper()
	ps := &processingService{status: http.StatusOK, result: result, paths: make(chan string, 16)}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.calls.Add(1)
		ps.paths <- r.URL.Path
		if ps.status != http.StatusOK {
			http.Error(w, `{"detail":"boom"}`, ps.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ps.result)
	}))
	t.Cleanup(ps.Close)
	return ps
}

// isolateHome points MINUTES_HOME at a temp dir and clears variables that
// would leak the developer's own settings into a test.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"MINUTES_OUTPUT", "MINUTES_VERBOSE", "MINUTES_QUIET", "MINUTES_SERVER_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, value) })
		}
	}
	t.Cleanup(CloseLogFile)
	return home
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// mockTerminalCheckFunc returns a function that can replace terminalCheck in tests.
// The returned cleanup function should be deferred to restore the original.
func mockTerminalCheckFunc(isTerminal bool) func() {
	original := terminalCheck
	terminalCheck = func() bool { return isTerminal }
	return func() { terminalCheck = original }
}

// mockRecordingDevice makes the record command capture data with a fake device.
func mockRecordingDevice(data []byte) func() {
	original := newRecordingDevice
	newRecordingDevice = func(config.RecordingConfig) (recorder.Device, error) {
		return recorder.NewFakeDevice(data), nil
	}
	return func() { newRecordingDevice = original }
}

var sampleResult = domain.MeetingResult{
	Transcript:          "Alice: let's ship it.",
	Minutes:             []string{"Reviewed the release plan"},
	KeyDiscussionPoints: []string{"Release timing"},
	Decisions:           []domain.Decision{{Decision: "Ship Friday", Speaker: "Alice"}},
	ActionItems:         []domain.ActionItem{{Task: "Write release notes", Owner: "Bob", Deadline: "Thursday"}},
}

// decodeItem decodes a history item printed with --output json.
func decodeItem(t *testing.T, out string) domain.HistoryItem {
	t.Helper()
	var item domain.HistoryItem
	require.NoError(t, json.Unmarshal([]byte(out), &item))
	return item
}
