package tui

import "github.com/charmbracelet/lipgloss"

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14)

	selectedItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimText = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	errText = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	okText = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))
)
