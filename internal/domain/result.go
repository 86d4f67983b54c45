// Package domain provides shared data types for minutes.
//
// This file defines the decoded outcome of processing a meeting artifact.
// Field names mirror the processing service's JSON (snake_case keys).
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, std lib
//   - MUST NOT import: any other internal package
package domain

// MeetingResult is the structured summary returned by the processing service.
// Every field is optional; an entirely empty result is valid and means the
// service found nothing to summarize.
type MeetingResult struct {
	// Transcript is the raw speech-to-text output (audio flows only).
	Transcript string `json:"transcript,omitempty"`
	// Minutes is the bulleted chronological summary.
	Minutes []string `json:"minutes,omitempty"`
	// KeyDiscussionPoints lists the main topics discussed.
	KeyDiscussionPoints []string `json:"key_discussion_points,omitempty"`
	// Decisions lists what was decided and, when known, by whom.
	Decisions []Decision `json:"decisions,omitempty"`
	// ActionItems lists follow-up tasks.
	ActionItems []ActionItem `json:"action_items,omitempty"`
}

// Decision is a single decision recorded in a meeting.
type Decision struct {
	Decision string `json:"decision"`
	Speaker  string `json:"speaker,omitempty"`
}

// ActionItem is a single follow-up task.
type ActionItem struct {
	Task     string `json:"task"`
	Owner    string `json:"owner,omitempty"`
	Deadline string `json:"deadline,omitempty"`
}

// IsEmpty reports whether the result carries no content at all.
func (r MeetingResult) IsEmpty() bool {
	return r.Transcript == "" &&
		len(r.Minutes) == 0 &&
		len(r.KeyDiscussionPoints) == 0 &&
		len(r.Decisions) == 0 &&
		len(r.ActionItems) == 0
}

// Clone returns a deep copy so snapshots handed to readers cannot alias
// the orchestrator's or the history's slices.
func (r MeetingResult) Clone() MeetingResult {
	out := MeetingResult{Transcript: r.Transcript}
	if r.Minutes != nil {
		out.Minutes = append([]string(nil), r.Minutes...)
	}
	if r.KeyDiscussionPoints != nil {
		out.KeyDiscussionPoints = append([]string(nil), r.KeyDiscussionPoints...)
	}
	if r.Decisions != nil {
		out.Decisions = append([]Decision(nil), r.Decisions...)
	}
	if r.ActionItems != nil {
		out.ActionItems = append([]ActionItem(nil), r.ActionItems...)
	}
	return out
}
