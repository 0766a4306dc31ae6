package console

import (
	"fmt"
	"strings"

	"tb-intake/internal/domain/entity"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63")).
		MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	yesStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("203")).
		Bold(true)

	noStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	severityStyles = map[entity.Severity]lipgloss.Style{
		entity.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		entity.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		entity.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
)

const barWidth = 24

// progressBar draws a fixed-width bar followed by the percentage.
func progressBar(percent int) string {
	percent = min(max(percent, 0), 100)
	filled := barWidth * percent / 100
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %3d%%", percent)
}

func renderNotification(severity entity.Severity, message string) string {
	style, ok := severityStyles[severity]
	if !ok {
		style = severityStyles[entity.SeverityInfo]
	}
	return style.Render(message)
}

func renderAnswer(v bool) string {
	if v {
		return yesStyle.Render("Yes")
	}
	return noStyle.Render("No")
}
