package constants

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelinePhase_String(t *testing.T) {
	tests := []struct {
		name     string
		phase    PipelinePhase
		expected string
	}{
		{name: "idle", phase: PhaseIdle, expected: "idle"},
		{name: "recording", phase: PhaseRecording, expected: "recording"},
		{name: "processing", phase: PhaseProcessing, expected: "processing"},
		{name: "succeeded", phase: PhaseSucceeded, expected: "succeeded"},
		{name: "failed", phase: PhaseFailed, expected: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestPipelinePhase_JSON(t *testing.T) {
	data, err := json.Marshal(PhaseProcessing)
	require.NoError(t, err)
	assert.JSONEq(t, `"processing"`, string(data))

	var phase PipelinePhase
	require.NoError(t, json.Unmarshal([]byte(`"failed"`), &phase))
	assert.Equal(t, PhaseFailed, phase)
}

func TestArtifactKind_String(t *testing.T) {
	assert.Equal(t, "audio", ArtifactAudio.String())
	assert.Equal(t, "images", ArtifactImages.String())
}

func TestTimeoutsAreAsymmetric(t *testing.T) {
	assert.Greater(t, DefaultAudioTimeout, DefaultImageTimeout)
	assert.Equal(t, 300.0, DefaultAudioTimeout.Seconds())
	assert.Equal(t, 120.0, DefaultImageTimeout.Seconds())
}
