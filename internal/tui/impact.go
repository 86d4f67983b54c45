package tui

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mrz1836/minutes/internal/constants"
)

// gramsPerKilogram is the threshold at which CO2 is shown in kg.
const gramsPerKilogram = 1000

// Impact is the paper and carbon estimate for the processed meetings.
type Impact struct {
	Meetings     int     `json:"meetings"`
	PagesAvoided int     `json:"pages_avoided"`
	TreesSaved   float64 `json:"trees_saved"`
	CO2Grams     float64 `json:"co2_grams"`
}

// ComputeImpact estimates the impact of meetings processed summaries.
func ComputeImpact(meetings int) Impact {
	pages := meetings * constants.PagesPerMeeting
	return Impact{
		Meetings:     meetings,
		PagesAvoided: pages,
		TreesSaved:   float64(pages) / constants.PagesPerTree,
		CO2Grams:     float64(pages) * constants.GramsCO2PerPage,
	}
}

// CO2 returns the carbon figure and its unit, switching to kg at 1000 g.
func (i Impact) CO2() (value, unit string) {
	p := message.NewPrinter(language.English)
	if i.CO2Grams < gramsPerKilogram {
		return p.Sprintf("%.1f", i.CO2Grams), "grams"
	}
	return p.Sprintf("%.2f", i.CO2Grams/gramsPerKilogram), "kg"
}

// Rows returns the label, value and unit rows of the impact view.
func (i Impact) Rows() [][]string {
	p := message.NewPrinter(language.English)
	co2, unit := i.CO2()
	return [][]string{
		{"Pages Avoided", p.Sprintf("%d", i.PagesAvoided), "pages"},
		{"Trees Saved", fmt.Sprintf("%.4f", i.TreesSaved), "trees"},
		{"CO₂ Reduced", co2, unit},
	}
}

// Footer returns the line describing what the estimate is based on.
func (i Impact) Footer() string {
	p := message.NewPrinter(language.English)
	noun := "meetings"
	if i.Meetings == 1 {
		noun = "meeting"
	}
	return p.Sprintf("Based on %d %s processed · %d pages/meeting avg", i.Meetings, noun, constants.PagesPerMeeting)
}

// WriteImpact renders the impact view to w.
func WriteImpact(w io.Writer, i Impact) {
	styles := NewOutputStyles()
	_, _ = fmt.Fprintln(w, styles.Success.Render("🌱 Your Impact"))
	_, _ = fmt.Fprintln(w)
	for _, row := range i.Rows() {
		_, _ = fmt.Fprintf(w, "  %s %s %s\n", padRight(row[0], 14), padRight(row[1], 10), row[2])
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Dim.Render(i.Footer()))
}
