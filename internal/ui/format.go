// Package ui renders snapshot data for the terminal.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// Status icons
const (
	IconOpen   = "●"
	IconMerged = "◆"
	IconClosed = "○"
)

var (
	StatusOpenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	StatusMergedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a855f7"))
	StatusClosedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	HeaderStyle       = lipgloss.NewStyle().Bold(true)
	MutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	CurrentPageStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// StatusLabel returns the colored icon and label for s.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusOpen:
		return StatusOpenStyle.Render(IconOpen + " open")
	case domain.StatusMerged:
		return StatusMergedStyle.Render(IconMerged + " merged")
	case domain.StatusClosed:
		return StatusClosedStyle.Render(IconClosed + " closed")
	}
	return string(s)
}

// PadRight pads str with spaces to width display cells. Styled strings are
// measured without their escape sequences.
func PadRight(str string, width int) string {
	w := lipgloss.Width(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

// Truncate shortens str to at most width display cells, marking the cut with an ellipsis.
func Truncate(str string, width int) string {
	return runewidth.Truncate(str, width, "…")
}
