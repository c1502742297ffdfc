package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateCell truncates a string to max visual width (cells), adding an
// ellipsis if needed. Uses go-runewidth to handle wide characters correctly.
func truncateCell(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padRight pads s with spaces on the right to the given visual width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
