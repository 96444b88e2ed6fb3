package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Mismatch list
	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	listItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	listItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	// Record view
	recordViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(4).
			Align(lipgloss.Right)

	addedLineStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	removedLineStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	contextLineStyle = lipgloss.NewStyle().
				Foreground(colorFg)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	lengthStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	recordHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	cleanStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
