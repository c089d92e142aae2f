package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the pre-configured lipgloss styles for the search UI.
type Styles struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Score      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// DefaultStyles returns the default dark theme.
func DefaultStyles() *Styles {
	var (
		primary = lipgloss.Color("#7C3AED")
		muted   = lipgloss.Color("#6C7086")
		errCol  = lipgloss.Color("#F38BA8")
		green   = lipgloss.Color("#A6E3A1")
		border  = lipgloss.Color("#45475A")
	)
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Background(primary),

		Error: lipgloss.NewStyle().
			Foreground(errCol),

		Score: lipgloss.NewStyle().
			Foreground(green),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
	}
}
