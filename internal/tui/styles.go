package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Colours
// =============================================================================

var (
	colorBlue   = lipgloss.Color("#3B82F6")
	colorPurple = lipgloss.Color("#A855F7")
	colorOrange = lipgloss.Color("#F97316")
	colorGreen  = lipgloss.Color("#22C55E")
	colorYellow = lipgloss.Color("#EAB308")
	colorRed    = lipgloss.Color("#EF4444")
	colorGrey   = lipgloss.Color("#6B7280")
	colorText   = lipgloss.Color("#E5E7EB")
)

// CategoryColor is the badge colour for an algorithm category.
func CategoryColor(category string) lipgloss.Color {
	switch strings.ToLower(category) {
	case "sorting":
		return colorBlue
	case "search":
		return colorPurple
	case "graph":
		return colorOrange
	default:
		return colorGrey
	}
}

// DifficultyColor is the badge colour for a difficulty level.
func DifficultyColor(difficulty string) lipgloss.Color {
	switch strings.ToLower(difficulty) {
	case "easy":
		return colorGreen
	case "medium":
		return colorYellow
	case "hard":
		return colorRed
	default:
		return colorGrey
	}
}

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText).MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGrey).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.BorderForeground(colorBlue)

	errorPanelStyle = panelStyle.BorderForeground(colorRed).Foreground(colorRed)

	cursorStyle  = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	selectedMark = lipgloss.NewStyle().Foreground(colorGreen).Render("●")
	dimStyle     = lipgloss.NewStyle().Foreground(colorGrey)
	labelStyle   = lipgloss.NewStyle().Foreground(colorGrey).Width(10)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	failureStyle = lipgloss.NewStyle().Foreground(colorRed)
)

func badge(text string, color lipgloss.Color) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(color).
		Padding(0, 1).
		Render(text)
}
