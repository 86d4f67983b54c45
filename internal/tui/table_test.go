package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/minutes/internal/clock"
	"github.com/mrz1836/minutes/internal/domain"
)

func TestHistoryRows(t *testing.T) {
	now := time.Date(2025, time.March, 4, 14, 15, 0, 0, time.UTC)
	c := clock.NewFake(now)

	items := []domain.HistoryItem{
		{Title: "Image Notes — Mar 4, 2:10 PM", Date: now.Add(-5 * time.Minute), Result: domain.MeetingResult{Minutes: []string{"Board photo"}}},
		{Title: "Meeting — Mar 3, 2:15 PM", Date: now.Add(-24 * time.Hour), Result: domain.MeetingResult{}},
		{Title: "Meeting — Mar 1, 9:00 AM", Date: now.Add(-3 * 24 * time.Hour), Result: domain.MeetingResult{
			Minutes: []string{strings.Repeat("long summary ", 10)},
		}},
	}

	rows := HistoryRows(items, c)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"0", "Image Notes — Mar 4, 2:10 PM", "5 minutes ago", "Board photo"}, rows[0])
	assert.Equal(t, []string{"1", "Meeting — Mar 3, 2:15 PM", "1 day ago", EmptyResult}, rows[1])
	assert.Equal(t, "2", rows[2][0])
	assert.LessOrEqual(t, runewidth.StringWidth(rows[2][3]), SummaryColumnWidth)
	assert.True(t, strings.HasSuffix(rows[2][3], "…"))
}

func TestHistoryHeaders(t *testing.T) {
	assert.Len(t, HistoryHeaders(), 4)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "m", Preview(domain.MeetingResult{Minutes: []string{"m"}, KeyDiscussionPoints: []string{"k"}}))
	assert.Equal(t, "k", Preview(domain.MeetingResult{KeyDiscussionPoints: []string{"k"}}))
	assert.Equal(t, "d", Preview(domain.MeetingResult{Decisions: []domain.Decision{{Decision: "d"}}}))
	assert.Equal(t, EmptyResult, Preview(domain.MeetingResult{}))
	assert.Empty(t, Preview(domain.MeetingResult{Transcript: "only words"}))
}
