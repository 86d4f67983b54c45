package tui

import (
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/domain"
)

// SummaryColumnWidth caps the preview column of the history table.
const SummaryColumnWidth = 48

// NoHistory is shown when the history is empty.
const NoHistory = "No summaries yet"

// HistoryHeaders are the history table columns.
func HistoryHeaders() []string {
	return []string{"#", "TITLE", "WHEN", "SUMMARY"}
}

// HistoryRows builds history table rows, newest first as stored. The index
// column is the position accepted by "history show" and "history delete".
func HistoryRows(items []domain.HistoryItem, c clock.Clock) [][]string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i),
			item.Title,
			RelativeTimeWith(item.Date, c),
			runewidth.Truncate(Preview(item.Result), SummaryColumnWidth, "…"),
		})
	}
	return rows
}

// Preview returns a one-line teaser for a result: the first minute, else
// the first key point, else the first decision.
func Preview(r domain.MeetingResult) string {
	switch {
	case len(r.Minutes) > 0:
		return r.Minutes[0]
	case len(r.KeyDiscussionPoints) > 0:
		return r.KeyDiscussionPoints[0]
	case len(r.Decisions) > 0:
		return r.Decisions[0].Decision
	case r.IsEmpty():
		return EmptyResult
	default:
		return ""
	}
}
