package domain

import (
	"time"

	"github.com/mrz1836/minutes/internal/constants"
)

// HistoryItem is one stored processing result.
// Items are immutable once created; they leave the history only through
// capacity eviction or explicit deletion.
type HistoryItem struct {
	// ID is a random UUID assigned at creation.
	ID string `json:"id"`
	// Title names the input kind plus a formatted timestamp.
	Title string `json:"title"`
	// Date is when the result was obtained.
	Date time.Time `json:"date"`
	// Result is the decoded processing result.
	Result MeetingResult `json:"result"`
}

// TitleFor builds a history title for the given artifact kind and time,
// e.g. "Meeting — Mar 4, 2:15 PM" or "Image Notes — Mar 4, 2:15 PM".
func TitleFor(kind constants.ArtifactKind, at time.Time) string {
	prefix := constants.TitleAudio
	if kind == constants.ArtifactImages {
		prefix = constants.TitleImages
	}
	return prefix + " — " + at.Format(constants.TitleDateLayout)
}
