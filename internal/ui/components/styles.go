package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// --- Palette based on the Gopher Bubble Tea Image ---
var (
	// The vibrant purple from the window header and straw
	colorPrimary = lipgloss.Color("#974FD7")
	// The cyan/blue from the Gopher's skin and "ssh" text
	colorSecondary = lipgloss.Color("#00ADD8")
	// The cream/beige from the tea drink (used for headers and highlights)
	colorAccent = lipgloss.Color("#F0D8B2")
	// Standard text colors
	colorText     = lipgloss.Color("#FAFAFA")
	colorSubText  = lipgloss.Color("#7D7D7D")
	colorError    = lipgloss.Color("#FF5555")
	colorSuccess  = lipgloss.Color("42")
	colorInactive = lipgloss.Color("#4D4D4D")
)

var (
	// --- General Layout Styles ---

	// Standard bold header for sections
	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				MarginBottom(1)

	// --- List Styles ---

	listTitleStyle  = lipgloss.NewStyle().MarginLeft(2).Foreground(colorPrimary).Bold(true)
	paginationStyle = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle       = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)

	// --- Form & Input Styles ---

	focusedStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	blurredStyle = lipgloss.NewStyle().Foreground(colorInactive)

	focusedButton = focusedStyle.Render("[ Connect ]")
	blurredButton = fmt.Sprintf("[ %s ]", blurredStyle.Render("Connect"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError).
			Padding(0, 2)

	// --- Transfer Manager Styles ---

	// Header bar with the connected host
	headerBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(colorPrimary). // Purple background
			Foreground(colorText).
			Align(lipgloss.Center).
			Padding(0, 1)

	// Inactive file panel
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorInactive).
			Padding(0, 1)

	// Active file panel
	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorSecondary). // Blue border for active focus
				Padding(0, 1)

	// Directory names
	dirStyle = lipgloss.NewStyle().
			Foreground(colorSecondary). // Blue text
			Bold(true)

	// Marked rows, queued for the next upload or download
	markedStyle = lipgloss.NewStyle().Foreground(colorAccent)

	// Selected row - Cream Accent text on dark background
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(colorAccent).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubText).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorInactive)

	successTextStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorTextStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedTextStyle   = lipgloss.NewStyle().Foreground(colorSubText)
)
