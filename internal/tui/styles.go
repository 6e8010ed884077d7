package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/CaptShanks/csvprism/internal/compare"
)

// Theme colors - Soft, low-contrast palette inspired by Tokyo Night / Catppuccin
var (
	// Primary colors for difference kinds (muted, pastel tones)
	addColor    = lipgloss.Color("#9ece6a") // Soft sage green
	removeColor = lipgloss.Color("#f7768e") // Soft coral red
	cellColor   = lipgloss.Color("#e0af68") // Warm amber
	structColor = lipgloss.Color("#bb9af7") // Soft lavender
	relocColor  = lipgloss.Color("#7dcfff") // Soft sky blue

	// UI colors
	selectedBg    = lipgloss.Color("#292e42") // Deep navy selection
	headerColor   = lipgloss.Color("#7aa2f7") // Soft periwinkle
	borderColor   = lipgloss.Color("#3b4261") // Muted slate
	mutedColorVal = lipgloss.Color("#565f89") // Soft gray-blue
	textColor     = lipgloss.Color("#a9b1d6") // Soft lavender gray
	decodedColor  = lipgloss.Color("#73daca") // Soft teal
)

// Styles
var (
	// App container
	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Header
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(headerColor).
			MarginBottom(1)

	// Summary line
	summaryStyle = lipgloss.NewStyle().
			Foreground(textColor).
			MarginBottom(1)

	// Difference styles based on kind
	kindRowCountStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(relocColor)

	kindMissingRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(structColor)

	kindColumnCountStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(structColor)

	kindCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cellColor)

	// Value styles for cell changes
	oldValueStyle = lipgloss.NewStyle().
			Foreground(removeColor).
			Strikethrough(true)

	newValueStyle = lipgloss.NewStyle().
			Foreground(addColor)

	decodedStyle = lipgloss.NewStyle().
			Foreground(decodedColor).
			Italic(true)

	// Muted style for general muted text
	mutedColor = lipgloss.NewStyle().
			Foreground(mutedColorVal)

	// Kind symbols
	countSymbol   = lipgloss.NewStyle().Foreground(relocColor).Render("≠")
	addSymbol     = lipgloss.NewStyle().Foreground(addColor).Render("+")
	removeSymbol  = lipgloss.NewStyle().Foreground(removeColor).Render("-")
	missingSymbol = lipgloss.NewStyle().Foreground(structColor).Render("±")
	structSymbol  = lipgloss.NewStyle().Foreground(structColor).Render("#")
	cellSymbol    = lipgloss.NewStyle().Foreground(cellColor).Render("~")

	// Expand/collapse indicators
	expandedIndicator  = lipgloss.NewStyle().Foreground(mutedColorVal).Render("▼")
	collapsedIndicator = lipgloss.NewStyle().Foreground(mutedColorVal).Render("▶")

	// Help style
	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColorVal).
			MarginTop(1)

	// Search style
	searchStyle = lipgloss.NewStyle().
			Foreground(headerColor).
			Bold(true)

	// Match highlight
	matchStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3b4261")).
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	// Border style for expanded detail blocks
	detailBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(borderColor).
				Padding(0, 1)
)

// GetKindSymbol returns the appropriate symbol for a difference kind
func GetKindSymbol(kind compare.Kind) string {
	switch kind {
	case compare.KindRowCount:
		return countSymbol
	case compare.KindMissingRow:
		return missingSymbol
	case compare.KindColumnCount:
		return structSymbol
	case compare.KindCell:
		return cellSymbol
	default:
		return cellSymbol
	}
}

// GetKindStyle returns the appropriate style for a difference kind
func GetKindStyle(kind compare.Kind) lipgloss.Style {
	switch kind {
	case compare.KindRowCount:
		return kindRowCountStyle
	case compare.KindMissingRow:
		return kindMissingRowStyle
	case compare.KindColumnCount:
		return kindColumnCountStyle
	case compare.KindCell:
		return kindCellStyle
	default:
		return kindCellStyle
	}
}

// GetKindColor returns the base color for a difference kind
func GetKindColor(kind compare.Kind) lipgloss.Color {
	switch kind {
	case compare.KindRowCount:
		return relocColor
	case compare.KindMissingRow:
		return structColor
	case compare.KindColumnCount:
		return structColor
	case compare.KindCell:
		return cellColor
	default:
		return cellColor
	}
}

// KindTitle returns the section heading for a difference kind
func KindTitle(kind compare.Kind) string {
	switch kind {
	case compare.KindRowCount:
		return "Row count"
	case compare.KindMissingRow:
		return "Missing rows"
	case compare.KindColumnCount:
		return "Column count mismatches"
	case compare.KindCell:
		return "Cell differences"
	default:
		return string(kind)
	}
}
