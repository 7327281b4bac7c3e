// Package report renders simulation results for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scormtrack/internal/simulation"
	"scormtrack/internal/ui/theme"
)

var kindStyles = map[string]lipgloss.Style{
	"load":     theme.Title,
	"reload":   theme.Hot,
	"step":     lipgloss.NewStyle().Foreground(theme.Lavender),
	"host":     lipgloss.NewStyle().Foreground(theme.Green),
	"rejected": theme.Fail,
	"error":    theme.Fail,
}

// Render formats res as a transcript. Without verbose only the steps, loads
// and host messages are listed.
func Render(res simulation.Result, verbose bool) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("scenario: "+res.Scenario) + "\n")
	for _, ev := range res.Events {
		if !verbose && ev.Kind == "player" {
			continue
		}
		style, ok := kindStyles[ev.Kind]
		if !ok {
			style = theme.Muted
		}
		sb.WriteString(fmt.Sprintf("%9s  %s  %s\n",
			fmt.Sprintf("+%.2fs", ev.At.Seconds()),
			style.Render(fmt.Sprintf("%-8s", ev.Kind)),
			ev.Detail))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("final: slide %d, furthest %d, total %d, loads %d, reloads %d\n",
		res.Final.CurrentPosition, res.Final.FurthestPosition, res.Final.TotalPositions, res.Loads, res.Reloads))
	if res.Passed() {
		sb.WriteString(theme.Pass.Render("PASS") + "\n")
		return sb.String()
	}
	for _, f := range res.Failures {
		sb.WriteString(theme.Fail.Render("FAIL") + " " + f + "\n")
	}
	return sb.String()
}
