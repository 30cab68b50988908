package terminal

import (
	"fmt"
	"strings"
)

// Progress bar characters.
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// DrawProgressBar draws a progress bar of the given width.
// Value is clamped to [0, 1].
// Example: DrawProgressBar(0.7, 10) returns "███████░░░".
func DrawProgressBar(value float64, width int) string {
	if width <= 0 {
		return ""
	}

	value = min(max(value, 0), 1)

	filled := int(value * float64(width))
	empty := width - filled

	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, empty)
}

// DrawLapBar draws the laps of one entity relative to the leader's laps.
// Example: "Rockets      ██████████░░  41.50 laps".
func DrawLapBar(label string, laps, leaderLaps float64, labelWidth, barWidth int) string {
	ratio := 0.0
	if leaderLaps > 0 {
		ratio = laps / leaderLaps
	}

	return fmt.Sprintf("%s %s %6.2f laps", PadRight(label, labelWidth), DrawProgressBar(ratio, barWidth), laps)
}
