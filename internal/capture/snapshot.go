package capture

import (
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/domain"
)

// Snapshot is the published pipeline state. Values handed out are copies.
type Snapshot struct {
	// Seq increases with every published change.
	Seq uint64
	// Phase is the current pipeline phase.
	Phase constants.PipelinePhase
	// Status is the progress label ("Recording...", "Transcribing...",
	// "Processing images..."); empty outside Recording and Processing.
	Status string
	// Kind is the artifact kind being or last processed.
	Kind constants.ArtifactKind
	// Result is set in Succeeded.
	Result *domain.MeetingResult
	// Item is the history entry written for Result.
	Item *domain.HistoryItem
	// Err is set in Failed; Message is its text.
	Err     error
	Message string
}

// Busy reports whether the pipeline cannot accept a trigger.
func (s Snapshot) Busy() bool {
	return s.Phase == constants.PhaseRecording || s.Phase == constants.PhaseProcessing
}

func (s Snapshot) clone() Snapshot {
	if s.Result != nil {
		r := s.Result.Clone()
		s.Result = &r
	}
	if s.Item != nil {
		item := *s.Item
		item.Result = item.Result.Clone()
		s.Item = &item
	}
	return s
}
