package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray
	colorError     = lipgloss.Color("9")   // bright red

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	stylePathPrompt = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	// List items
	styleListSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	styleListNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleMime = lipgloss.NewStyle().
			Foreground(colorDim)

	styleIndexed = lipgloss.NewStyle().
			Foreground(colorSecondary)

	// Session status
	styleStatusOK = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleStatusBusy = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleStatusFailed = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleToast = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(colorHighlight).
			Padding(0, 1)

	// Panel titles
	styleTitle = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)
)
