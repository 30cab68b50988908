package terminal

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// TruncateWithEllipsis truncates s to maxWidth runes, adding "..." if truncated.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if displayWidth(s) <= maxWidth {
		return s
	}

	if maxWidth <= len(Ellipsis) {
		return strings.Repeat(".", max(maxWidth, 0))
	}

	runes := []rune(s)

	return string(runes[:maxWidth-len(Ellipsis)]) + Ellipsis
}

// PadRight pads s with spaces on the right to reach width.
// If s is already wider, it is returned unchanged.
func PadRight(s string, width int) string {
	n := displayWidth(s)
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}

// PadLeft pads s with spaces on the left to reach width.
func PadLeft(s string, width int) string {
	n := displayWidth(s)
	if n >= width {
		return s
	}

	return strings.Repeat(" ", width-n) + s
}

func displayWidth(s string) int {
	return utf8.RuneCountInString(s)
}
