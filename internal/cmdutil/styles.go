package cmdutil

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette using ANSI colors for broad terminal compatibility.
var (
	Primary = lipgloss.Color("4")   // Blue
	Success = lipgloss.Color("2")   // Green
	Warning = lipgloss.Color("3")   // Yellow
	Error   = lipgloss.Color("1")   // Red
	Muted   = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
)

// Text styles for command summaries.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")).
		Width(14)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// Indicators.
const (
	CheckMark = "✓"
	CrossMark = "✗"
)

// Field renders a "label value" summary line.
func Field(label string, value any) string {
	return Label.Render(label+":") + " " + fmt.Sprint(value)
}

// Status renders a success or failure marker followed by msg.
func Status(ok bool, msg string) string {
	if ok {
		return SuccessText.Render(CheckMark) + " " + msg
	}
	return ErrorText.Render(CrossMark) + " " + msg
}
