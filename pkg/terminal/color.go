package terminal

import (
	"github.com/fatih/color"
)

// Color names the palette used for console output.
type Color int

// Color constants.
const (
	ColorNone Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	ColorBlue
	ColorGray
)

// Gap thresholds in laps for colour assignment.
const (
	GapThresholdClose = 0.5
	GapThresholdFar   = 1.0
)

func (c Color) attribute() (color.Attribute, bool) {
	switch c {
	case ColorGreen:
		return color.FgGreen, true
	case ColorYellow:
		return color.FgYellow, true
	case ColorRed:
		return color.FgRed, true
	case ColorBlue:
		return color.FgBlue, true
	case ColorGray:
		return color.FgHiBlack, true
	default:
		return 0, false
	}
}

// Colorize applies c to text. If NoColor is set text is returned unchanged.
func (cfg Config) Colorize(text string, c Color) string {
	attr, ok := c.attribute()
	if cfg.NoColor || !ok {
		return text
	}

	painter := color.New(attr)
	painter.EnableColor()

	return painter.Sprint(text)
}

// ColorForGap returns the colour for a gap to the leader, in laps.
func ColorForGap(gap float64) Color {
	switch {
	case gap <= GapThresholdClose:
		return ColorGreen
	case gap <= GapThresholdFar:
		return ColorYellow
	default:
		return ColorRed
	}
}
