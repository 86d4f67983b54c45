package constants

// PipelinePhase represents the state of the capture pipeline.
// Phase values use snake_case for JSON serialization compatibility.
type PipelinePhase string

// Pipeline phase constants define the valid states of the capture state machine:
//
//	Idle → Recording, Processing
//	Recording → Processing, Idle
//	Processing → Succeeded, Failed
//	Succeeded → Idle
//	Failed → Idle
const (
	// PhaseIdle indicates no capture or submission is in progress.
	PhaseIdle PipelinePhase = "idle"

	// PhaseRecording indicates the microphone is being captured.
	PhaseRecording PipelinePhase = "recording"

	// PhaseProcessing indicates an artifact is being encoded and submitted.
	PhaseProcessing PipelinePhase = "processing"

	// PhaseSucceeded indicates a result is available and not yet acknowledged.
	PhaseSucceeded PipelinePhase = "succeeded"

	// PhaseFailed indicates the last submission failed and the error was not yet dismissed.
	PhaseFailed PipelinePhase = "failed"
)

// String returns the string representation of the PipelinePhase.
func (p PipelinePhase) String() string {
	return string(p)
}

// Caller-visible status text for in-progress phases.
const (
	// StatusRecording is shown while the microphone is being captured.
	StatusRecording = "Recording..."

	// StatusTranscribing is shown while an audio artifact is being processed.
	StatusTranscribing = "Transcribing..."

	// StatusProcessingImages is shown while an image set is being processed.
	StatusProcessingImages = "Processing images..."
)

// ArtifactKind identifies the flavor of a captured artifact.
type ArtifactKind string

// Artifact kinds.
const (
	// ArtifactAudio is a single recorded or uploaded audio file.
	ArtifactAudio ArtifactKind = "audio"

	// ArtifactImages is an ordered set of photographed pages.
	ArtifactImages ArtifactKind = "images"
)

// String returns the string representation of the ArtifactKind.
func (k ArtifactKind) String() string {
	return string(k)
}
