package terminal

import "strings"

// Box drawing characters.
const (
	BoxHorizontal       = "─"
	BoxHeavyHorizontal  = "━"
	BoxHeavyVertical    = "┃"
	BoxHeavyTopLeft     = "┏"
	BoxHeavyTopRight    = "┓"
	BoxHeavyBottomLeft  = "┗"
	BoxHeavyBottomRight = "┛"
)

// HeaderPadding is the space around header content.
const HeaderPadding = 1

// DrawSeparator draws a thin horizontal separator line.
func DrawSeparator(width int) string {
	if width <= 0 {
		return ""
	}

	return strings.Repeat(BoxHorizontal, width)
}

// DrawHeader draws a heavy-bordered section header.
// ┏━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┓
// ┃ TITLE                     rightText ┃
// ┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛
func DrawHeader(title, rightText string, width int) string {
	const borders = 2

	titleWidth := displayWidth(title)
	rightWidth := displayWidth(rightText)

	minRequired := titleWidth + rightWidth + borders + 1 + HeaderPadding*2
	width = max(width, minRequired)

	innerWidth := width - borders
	contentWidth := innerWidth - HeaderPadding*2

	var content string

	if rightText == "" {
		content = PadRight(title, contentWidth)
	} else {
		gap := max(contentWidth-titleWidth-rightWidth, 1)
		content = title + strings.Repeat(" ", gap) + rightText
	}

	padding := strings.Repeat(" ", HeaderPadding)

	var sb strings.Builder

	sb.WriteString(BoxHeavyTopLeft + strings.Repeat(BoxHeavyHorizontal, innerWidth) + BoxHeavyTopRight + "\n")
	sb.WriteString(BoxHeavyVertical + padding + content + padding + BoxHeavyVertical + "\n")
	sb.WriteString(BoxHeavyBottomLeft + strings.Repeat(BoxHeavyHorizontal, innerWidth) + BoxHeavyBottomRight)

	return sb.String()
}
