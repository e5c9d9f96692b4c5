package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge block characters.
const (
	gaugeFilled = '█'
	gaugeEmpty  = '░'
)

// RenderGauge draws a dial value as a bar, e.g. [████████░░░░]  67%.
// Values outside 0-100 are clamped. The bar is green, yellow from 60 and
// red from 80.
func RenderGauge(value int, width int) string {
	if width <= 0 {
		return ""
	}

	percent := float64(value)
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	filled := int((percent / 100.0) * float64(width))

	var sb strings.Builder
	sb.Grow(width + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(gaugeFilled), filled))
	sb.WriteString(strings.Repeat(string(gaugeEmpty), width-filled))
	sb.WriteRune(']')

	style := lipgloss.NewStyle().Foreground(thresholdColor(percent))
	return style.Render(sb.String()) + fmt.Sprintf(" %3.0f%%", percent)
}
