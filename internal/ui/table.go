package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DialRow is one line of the dial table.
type DialRow struct {
	Role      string // Bound role, empty when the dial matches no role
	Name      string
	UID       string
	Value     int
	Backlight string
}

// RenderDialTable renders the server's dials, bound roles first.
func RenderDialTable(rows []DialRow) string {
	if len(rows) == 0 {
		return "No dials reported by the server"
	}

	headerStyle := HeaderStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(
		"  " + padRight("ROLE", 10) + padRight("NAME", 18) + padRight("UID", 26) + padRight("VALUE", 20) + "BACKLIGHT"))
	sb.WriteString("\n")

	for _, row := range rows {
		icon := SuccessStyle().Render(SymbolComplete)
		role := row.Role
		if role == "" {
			icon = MutedStyle().Render(SymbolPending)
			role = MutedStyle().Render("-")
		}

		sb.WriteString(icon + " " +
			padRight(role, 10) +
			padRight(row.Name, 18) +
			padRight(MutedStyle().Render(row.UID), 26) +
			padRight(RenderGauge(row.Value, 10), 20) +
			row.Backlight)
		sb.WriteString("\n")
	}
	return sb.String()
}

// padRight pads s to width visible cells.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-visible)
}
