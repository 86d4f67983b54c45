package capture

import (
	"fmt"
	"slices"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// ValidTransitions defines all allowed phase changes of the pipeline.
//
//	Idle → Recording, Processing
//	Recording → Processing, Idle (no artifact)
//	Processing → Succeeded, Failed
//	Succeeded → Idle
//	Failed → Idle
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.PipelinePhase][]constants.PipelinePhase{
	constants.PhaseIdle:       {constants.PhaseRecording, constants.PhaseProcessing},
	constants.PhaseRecording:  {constants.PhaseProcessing, constants.PhaseIdle},
	constants.PhaseProcessing: {constants.PhaseSucceeded, constants.PhaseFailed},
	constants.PhaseSucceeded:  {constants.PhaseIdle},
	constants.PhaseFailed:     {constants.PhaseIdle},
}

// IsValidTransition checks if a change from one phase to another is allowed.
func IsValidTransition(from, to constants.PipelinePhase) bool {
	return slices.Contains(ValidTransitions[from], to)
}

// IsTerminal reports whether the phase holds a published outcome awaiting acknowledgement.
func IsTerminal(phase constants.PipelinePhase) bool {
	return phase == constants.PhaseSucceeded || phase == constants.PhaseFailed
}

func checkTransition(from, to constants.PipelinePhase) error {
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", errors.ErrInvalidTransition, from, to)
	}
	return nil
}
