package live

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	elapsed := ""
	if !state.StartedAt.IsZero() {
		elapsed = now.Sub(state.StartedAt).Round(100 * time.Millisecond).String()
	}
	line := "rately load run"
	if elapsed != "" {
		line += " | Elapsed: " + elapsed
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the dispatcher counters line.
func renderSummary(state State, noColor bool) string {
	line := "Submitted: " + strconv.Itoa(state.Submitted) +
		" Queued: " + strconv.Itoa(state.Depth) +
		" Active: " + strconv.Itoa(state.Active) +
		" Completed: " + strconv.Itoa(state.Completed) +
		" Windows: " + strconv.Itoa(len(state.Windows))
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the completion line.
func renderFooter(state State, noColor bool) string {
	if !state.Finished {
		return ""
	}
	return stylize("Run complete.", noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
