package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ellipsis = "…"

// wrapTitle word-wraps title into at most maxLines lines of maxWidth
// cells. Whatever does not fit is cut with an ellipsis on the last line.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	maxLines = max(maxLines, 1)
	words := strings.Fields(title)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for i, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) <= maxWidth {
			line += " " + w
			continue
		}
		if len(lines) == maxLines-1 {
			line = strings.Join(append([]string{line}, words[i+1:]...), " ")
			break
		}
		lines = append(lines, truncate(line, maxWidth))
		line = w
	}
	return append(lines, truncate(line, maxWidth))
}

// truncate cuts s to width display cells, ending in an ellipsis.
func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}
