package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlayDialog centers card over base and composites the two, preserving
// escape sequences in the uncovered regions of each base line.
func overlayDialog(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	placed := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)

	baseLines := canvasLines(base, width, height)
	cardLines := canvasLines(placed, width, height)

	out := make([]string, height)
	for i := 0; i < height; i++ {
		start, end, covered := coveredSpan(cardLines[i], width)
		if !covered {
			out[i] = baseLines[i]
			continue
		}
		left := ansi.Truncate(baseLines[i], start, "")
		mid := ansi.Truncate(cutColumns(cardLines[i], start), end-start, "")
		right := cutColumns(baseLines[i], end)
		out[i] = padLine(left+mid+right, width)
	}
	return strings.Join(out, "\n")
}

// coveredSpan finds the column range of a dialog line excluding the
// surrounding padding that lipgloss.Place adds. Both offsets are display
// columns; border runes are multi-byte, so byte offsets would overshoot.
func coveredSpan(line string, width int) (start, end int, ok bool) {
	plain := ansi.Strip(ansi.Truncate(line, width, ""))
	trimmed := strings.TrimRight(plain, " ")
	if trimmed == "" {
		return 0, 0, false
	}
	start = len(trimmed) - len(strings.TrimLeft(trimmed, " "))
	end = ansi.StringWidth(trimmed)
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

func canvasLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padLine(lines[i], width)
	}
	return lines
}

func cutColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	head := ansi.Truncate(s, cols, "")
	return strings.TrimPrefix(s, head)
}

func padLine(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
