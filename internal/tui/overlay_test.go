package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestOverlayDialogPreservesBaseOutsideCard(t *testing.T) {
	width, height := 40, 7
	row := strings.Repeat("#", width)
	base := strings.TrimRight(strings.Repeat(row+"\n", height), "\n")

	// 4 columns by 3 rows once the rounded border is added
	card := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Render("hi")

	out := overlayDialog(base, card, width, height)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, height)

	left := (width - 4) / 2
	top := (height - 3) / 2
	for y, line := range lines {
		require.Equal(t, width, ansi.StringWidth(line), "line %d width", y)
		cols := []rune(ansi.Strip(line))
		for x, r := range cols {
			inCard := y >= top && y < top+3 && x >= left && x < left+4
			if !inCard {
				require.Equalf(t, '#', r, "base overwritten outside card at line %d col %d", y, x)
			}
		}
	}

	content := ansi.Strip(lines[top+1])
	require.Equal(t, "│hi│", content[left:left+len("│hi│")])
}

func TestOverlayDialogSkipsUncoveredLines(t *testing.T) {
	base := strings.TrimRight(strings.Repeat(strings.Repeat(".", 20)+"\n", 5), "\n")
	out := overlayDialog(base, "ok", 20, 5)
	lines := strings.Split(out, "\n")
	require.Equal(t, strings.Repeat(".", 20), lines[0])
	require.Equal(t, strings.Repeat(".", 20), lines[4])
	require.Contains(t, lines[2], "ok")
}
