package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// Summary is what a finished run reports back to the user.
type Summary struct {
	Database      string
	Load          roomstat.LoadSummary
	Outputs       []string
	ReferenceDate roomstat.Date
	Duration      time.Duration
}

// RenderSummary formats s as plain lines, or as a bordered lipgloss panel
// when styled is set.
func RenderSummary(s Summary, styled bool) string {
	rows := [][2]string{
		{"Database", s.Database},
		{"Rooms", countLine(s.Load.RoomsInserted, s.Load.RoomsSkipped)},
		{"Students", countLine(s.Load.StudentsInserted, s.Load.StudentsSkipped)},
	}
	if !s.ReferenceDate.IsZero() {
		rows = append(rows, [2]string{"Ages as of", s.ReferenceDate.String()})
	}
	rows = append(rows, [2]string{"Duration", s.Duration.Round(time.Millisecond).String()})

	if !styled {
		var b strings.Builder
		b.WriteString("Run complete\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "  %-12s %s\n", r[0]+":", r[1])
		}
		for _, out := range s.Outputs {
			fmt.Fprintf(&b, "  %s %s\n", SymbolBullet, out)
		}
		return b.String()
	}

	lines := []string{TitleStyle.Render(SymbolCheck + " Run complete"), ""}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(r[0]), r[1]))
	}
	if len(s.Outputs) > 0 {
		lines = append(lines, "", LabelStyle.Render("Outputs"))
		for _, out := range s.Outputs {
			lines = append(lines, SuccessStyle.Render(SymbolBullet)+" "+out)
		}
	}
	return BoxStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func countLine(inserted, skipped int) string {
	line := fmt.Sprintf("%d inserted", inserted)
	if skipped > 0 {
		line += fmt.Sprintf(", %d already present", skipped)
	}
	return line
}
