package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the terminal views
var Styles = struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Muted     lipgloss.Style
	ErrorBox  lipgloss.Style
	NoticeBox lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		MarginTop(1),

	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")),

	Subheader: lipgloss.NewStyle().
		Foreground(lipgloss.Color("229")).
		MarginTop(1),

	Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(70),

	NoticeBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1).
		Width(70),
}
