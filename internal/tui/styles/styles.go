package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Color palette
var (
	Parchment  = lipgloss.Color("#E8DCC0")
	Leather    = lipgloss.Color("#8B4513")
	Gilt       = lipgloss.Color("#D4A537")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Red        = lipgloss.Color("#EF4444")
)

// Page boxes
var (
	PageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	// Page being lifted or turned
	LeafStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gilt).
			Padding(0, 1)

	CoverStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Gilt).
			Background(Leather).
			Foreground(Parchment)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Gilt)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	// Page area under a raised leaf
	ShadowStyle = lipgloss.NewStyle().
			Faint(true)

	SpineStyle = lipgloss.NewStyle().
			Foreground(Gilt)
)

// Bookmark marker shown in the page header
const BookmarkChar = "★"

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gilt).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Gilt)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Gilt)
)

// Match highlight styles for search results
var (
	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Gilt).
				Bold(true)

	MatchHighlightSelectedStyle = lipgloss.NewStyle().
					Foreground(Gilt).
					Background(SlateLight).
					Bold(true)
)

// Helper functions

// Truncate truncates a string to the given cell width with an ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// RenderProgressBar renders how far through the book the reader is
func RenderProgressBar(percent float64, width int) string {
	if width < 3 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	filled = max(0, min(filled, width))

	bar := ""
	for i := 0; i < filled; i++ {
		bar += AccentStyle.Render("━")
	}
	for i := filled; i < width; i++ {
		bar += DimStyle.Render("─")
	}
	return bar
}
