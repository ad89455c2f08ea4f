package live

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// windowColumns returns the columns for the window history table.
func windowColumns() []table.Column {
	return []table.Column{
		{Title: "Window", Width: 8},
		{Title: "Batch", Width: 7},
		{Title: "Active", Width: 7},
		{Title: "Queued", Width: 7},
	}
}

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// rowsForState converts window history into table rows, newest first.
func rowsForState(state State) []table.Row {
	rows := make([]table.Row, 0, len(state.Windows))
	for i := len(state.Windows) - 1; i >= 0; i-- {
		row := state.Windows[i]
		rows = append(rows, table.Row{
			strconv.Itoa(row.Index),
			strconv.Itoa(row.BatchSize),
			strconv.Itoa(row.Active),
			strconv.Itoa(row.Depth),
		})
	}
	return rows
}
