package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// DelayColor returns the style for a delay status.
func DelayColor(status domain.DelayStatus) lipgloss.Style {
	switch status {
	case domain.DelayCritical:
		return StyleRed
	case domain.DelayBehind:
		return StyleYellow
	case domain.DelayOnTrack:
		return StyleGreen
	case domain.DelayAhead:
		return StyleBlue
	default:
		return StyleDim
	}
}

// DelayBadge renders a delay status such as "● BEHIND".
func DelayBadge(status domain.DelayStatus) string {
	if status == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	return DelayColor(status).Render("● " + strings.ToUpper(string(status)))
}

// OverallBadge renders the student-wide status.
func OverallBadge(status domain.OverallStatus) string {
	switch status {
	case domain.OverallCritical:
		return StyleRed.Render("▲ CRITICAL")
	case domain.OverallNeedsAttention:
		return StyleYellow.Render("● NEEDS ATTENTION")
	case domain.OverallGood:
		return StyleGreen.Render("● GOOD")
	default:
		return StyleDim.Render(string(status))
	}
}

func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return StyleRed.Render("high")
	case domain.PriorityMedium:
		return StyleYellow.Render("medium")
	case domain.PriorityLow:
		return StyleGreen.Render("low")
	default:
		return StyleDim.Render(string(p))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
