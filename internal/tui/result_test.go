package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/minutes/internal/domain"
)

func fullResult() domain.MeetingResult {
	return domain.MeetingResult{
		Transcript:          "Alice: let's ship on Friday.",
		Minutes:             []string{"Reviewed release plan"},
		KeyDiscussionPoints: []string{"Release date"},
		Decisions: []domain.Decision{
			{Decision: "Ship Friday", Speaker: "Alice"},
			{Decision: "Freeze main"},
		},
		ActionItems: []domain.ActionItem{
			{Task: "Tag release", Owner: "Bob", Deadline: "Friday"},
			{Task: "Write notes", Deadline: "Monday"},
			{Task: "Celebrate"},
		},
	}
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "Key Discussion Points", SectionTitle("key discussion points"))
	assert.Equal(t, "Action Items", SectionTitle("action items"))
}

func TestFormatDecisionAndActionItem(t *testing.T) {
	assert.Equal(t, "Ship Friday — Alice", FormatDecision(domain.Decision{Decision: "Ship Friday", Speaker: "Alice"}))
	assert.Equal(t, "Freeze main", FormatDecision(domain.Decision{Decision: "Freeze main"}))

	assert.Equal(t, "Tag release (Bob, Friday)", FormatActionItem(domain.ActionItem{Task: "Tag release", Owner: "Bob", Deadline: "Friday"}))
	assert.Equal(t, "Write notes (Monday)", FormatActionItem(domain.ActionItem{Task: "Write notes", Deadline: "Monday"}))
	assert.Equal(t, "Celebrate", FormatActionItem(domain.ActionItem{Task: "Celebrate"}))
}

func TestResultMarkdown(t *testing.T) {
	md := ResultMarkdown(fullResult(), "Meeting — Mar 4, 2:15 PM")

	assert.True(t, strings.HasPrefix(md, "# Meeting — Mar 4, 2:15 PM\n\n## Minutes\n\n- Reviewed release plan\n"))
	assert.Contains(t, md, "## Key Discussion Points\n\n- Release date\n")
	assert.Contains(t, md, "## Decisions\n\n- Ship Friday — Alice\n- Freeze main\n")
	assert.Contains(t, md, "## Action Items\n\n- Tag release (Bob, Friday)\n")
	assert.Contains(t, md, "## Transcript\n\nAlice: let's ship on Friday.\n")

	order := []string{"## Minutes", "## Key Discussion Points", "## Decisions", "## Action Items", "## Transcript"}
	last := -1
	for _, heading := range order {
		idx := strings.Index(md, heading)
		assert.Greater(t, idx, last, heading)
		last = idx
	}
}

func TestResultMarkdown_MissingTranscript(t *testing.T) {
	md := ResultMarkdown(domain.MeetingResult{Minutes: []string{"a", "b"}}, "")
	assert.Equal(t, "## Minutes\n\n- a\n- b\n\n## Transcript\n\n_No transcript available._\n", md)
}

func TestResultMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "# T\n\nNothing found in this meeting.\n", ResultMarkdown(domain.MeetingResult{}, "T"))
}

func TestPlainResult(t *testing.T) {
	out := PlainResult(domain.MeetingResult{
		Minutes:   []string{"a"},
		Decisions: []domain.Decision{{Decision: "d", Speaker: "s"}},
	}, "Title")

	assert.Equal(t, "Title\n\nMinutes\n  • a\n\nDecisions\n  • d — s\n\nTranscript\n  No transcript available.\n", out)
	assert.Equal(t, EmptyResult+"\n", PlainResult(domain.MeetingResult{}, ""))
}

func TestResultRenderer_PlainFallback(t *testing.T) {
	r := NewResultRenderer(false, 0)
	result := domain.MeetingResult{Minutes: []string{"a"}}
	assert.Equal(t, PlainResult(result, "T"), r.Render(result, "T"))

	var b strings.Builder
	r.Write(&b, result, "T")
	assert.Equal(t, PlainResult(result, "T"), b.String())
}

func TestResultRenderer_NoColorIsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	r := NewResultRenderer(true, 60)
	assert.Nil(t, r.renderer)
}

func TestResultRenderer_Styled(t *testing.T) {
	r := NewResultRenderer(true, 60)
	if r.renderer == nil {
		t.Skip("color support disabled in this environment")
	}
	out := r.Render(fullResult(), "Standup")
	assert.Contains(t, out, "Standup")
	assert.Contains(t, out, "Reviewed release plan")
	assert.Contains(t, out, "Ship Friday")
}

func TestShareText(t *testing.T) {
	text := ShareText(fullResult())
	assert.Equal(t, "MEETING SUMMARY\n\n"+
		"• Reviewed release plan\n"+
		"\nDECISIONS\n"+
		"• Ship Friday — Alice\n"+
		"• Freeze main\n"+
		"\nACTION ITEMS\n"+
		"• Tag release (Bob, Friday)\n"+
		"• Write notes (Monday)\n"+
		"• Celebrate", text)
}

func TestShareText_EmptySectionsKeepHeaders(t *testing.T) {
	assert.Equal(t, "MEETING SUMMARY\n\n\nDECISIONS\n\nACTION ITEMS", ShareText(domain.MeetingResult{}))
}
