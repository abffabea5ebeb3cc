package styles

import "github.com/charmbracelet/lipgloss/v2"

// MenuBar is the key help line at the bottom of the TUI.
var MenuBar = lipgloss.NewStyle().
	Background(lipgloss.Color("235")).
	Foreground(lipgloss.Color("252")).
	Padding(0, 1)

var ListTitle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("99")).
	MarginLeft(2)

var (
	SelectedOffset = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	Offset         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	NodeName       = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	UnknownNode    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorText      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)
