package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/minutes/internal/domain"
)

// Placeholder texts for missing content.
const (
	NoTranscript = "No transcript available."
	EmptyResult  = "Nothing found in this meeting."
)

// Result section names, in display order.
const (
	sectionMinutes     = "minutes"
	sectionKeyPoints   = "key discussion points"
	sectionDecisions   = "decisions"
	sectionActionItems = "action items"
	sectionTranscript  = "transcript"
)

// DefaultWrapWidth is the word wrap used by the styled result view.
const DefaultWrapWidth = 80

// SectionTitle returns a section name in title case ("Key Discussion Points").
func SectionTitle(name string) string {
	return cases.Title(language.English).String(name)
}

func upper(s string) string {
	return cases.Upper(language.English).String(s)
}

type section struct {
	name  string
	items []string
}

// sections flattens a result into display sections. Empty list sections are
// omitted; the transcript section is always present.
func sections(r domain.MeetingResult) []section {
	out := make([]section, 0, 5)
	if len(r.Minutes) > 0 {
		out = append(out, section{sectionMinutes, r.Minutes})
	}
	if len(r.KeyDiscussionPoints) > 0 {
		out = append(out, section{sectionKeyPoints, r.KeyDiscussionPoints})
	}
	if len(r.Decisions) > 0 {
		items := make([]string, 0, len(r.Decisions))
		for _, d := range r.Decisions {
			items = append(items, FormatDecision(d))
		}
		out = append(out, section{sectionDecisions, items})
	}
	if len(r.ActionItems) > 0 {
		items := make([]string, 0, len(r.ActionItems))
		for _, a := range r.ActionItems {
			items = append(items, FormatActionItem(a))
		}
		out = append(out, section{sectionActionItems, items})
	}
	return out
}

// FormatDecision renders "decision — speaker", or the bare decision when the
// speaker is unknown.
func FormatDecision(d domain.Decision) string {
	if d.Speaker == "" {
		return d.Decision
	}
	return d.Decision + " — " + d.Speaker
}

// FormatActionItem renders "task (owner, deadline)", leaving out unknown parts.
func FormatActionItem(a domain.ActionItem) string {
	var extra []string
	if a.Owner != "" {
		extra = append(extra, a.Owner)
	}
	if a.Deadline != "" {
		extra = append(extra, a.Deadline)
	}
	if len(extra) == 0 {
		return a.Task
	}
	return fmt.Sprintf("%s (%s)", a.Task, strings.Join(extra, ", "))
}

// ResultMarkdown builds the markdown document for a result. An all-empty
// result renders EmptyResult under the title.
func ResultMarkdown(r domain.MeetingResult, title string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if r.IsEmpty() {
		b.WriteString(EmptyResult + "\n")
		return b.String()
	}

	for _, s := range sections(r) {
		fmt.Fprintf(&b, "## %s\n\n", SectionTitle(s.name))
		for _, item := range s.items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", SectionTitle(sectionTranscript))
	if r.Transcript == "" {
		fmt.Fprintf(&b, "_%s_\n", NoTranscript)
	} else {
		b.WriteString(r.Transcript + "\n")
	}
	return b.String()
}

// PlainResult renders a result as unstyled text.
func PlainResult(r domain.MeetingResult, title string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n\n")
	}
	if r.IsEmpty() {
		b.WriteString(EmptyResult + "\n")
		return b.String()
	}

	for _, s := range sections(r) {
		b.WriteString(SectionTitle(s.name) + "\n")
		for _, item := range s.items {
			b.WriteString("  • " + item + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(SectionTitle(sectionTranscript) + "\n")
	transcript := r.Transcript
	if transcript == "" {
		transcript = NoTranscript
	}
	b.WriteString(indent(transcript, "  ") + "\n")
	return b.String()
}

// ResultRenderer renders results through glamour, falling back to plain
// text when styling is off or glamour fails.
type ResultRenderer struct {
	renderer *glamour.TermRenderer
}

// NewResultRenderer creates a renderer. When styled is false, or glamour
// cannot be initialized, output is plain text.
func NewResultRenderer(styled bool, wrap int) *ResultRenderer {
	if !styled || !HasColorSupport() {
		return &ResultRenderer{}
	}
	if wrap <= 0 {
		wrap = DefaultWrapWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return &ResultRenderer{}
	}
	return &ResultRenderer{renderer: r}
}

// Render returns the display text for a result.
func (rr *ResultRenderer) Render(r domain.MeetingResult, title string) string {
	if rr.renderer != nil {
		if out, err := rr.renderer.Render(ResultMarkdown(r, title)); err == nil {
			return out
		}
	}
	return PlainResult(r, title)
}

// Write renders a result to w.
func (rr *ResultRenderer) Write(w io.Writer, r domain.MeetingResult, title string) {
	_, _ = io.WriteString(w, rr.Render(r, title))
}

// ShareText builds the plain summary meant for pasting into chat or email:
// a MEETING SUMMARY header with the minutes, then the DECISIONS and ACTION
// ITEMS sections. Section headers are present even when a section is empty.
func ShareText(r domain.MeetingResult) string {
	lines := []string{upper("meeting summary") + "\n"}
	for _, m := range r.Minutes {
		lines = append(lines, "• "+m)
	}

	lines = append(lines, "\n"+upper(sectionDecisions))
	for _, d := range r.Decisions {
		lines = append(lines, "• "+FormatDecision(d))
	}

	lines = append(lines, "\n"+upper(sectionActionItems))
	for _, a := range r.ActionItems {
		lines = append(lines, "• "+FormatActionItem(a))
	}
	return strings.Join(lines, "\n")
}
