package output

import (
	"fmt"
	"strings"
)

// Bar renders a horizontal histogram bar for a 0-1 fraction.
// Example: "████████░░"
func Bar(fraction float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleMuted.Render(strings.Repeat("░", width-filled))
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
// The higherIsBetter parameter controls which direction reads as good.
func TrendArrow(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := (isPositive && higherIsBetter) || (!isPositive && !higherIsBetter)

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
