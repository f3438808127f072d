package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"coachlab/internal/analysis"
)

var (
	accentColor  = lipgloss.Color("#7C3AED")
	readyColor   = lipgloss.Color("#10B981")
	cautionColor = lipgloss.Color("#F59E0B")
	recoverColor = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	darkColor    = lipgloss.Color("#1F2937")
	lightColor   = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lightColor).
			Background(accentColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle         = lipgloss.NewStyle().Foreground(mutedColor).MarginBottom(1)
	navActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	navInactiveStyle = lipgloss.NewStyle().Foreground(mutedColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	metricLabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(20)
	metricValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lightColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				BorderBottom(true).
				BorderForeground(mutedColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(accentColor).
				Foreground(lightColor).
				Padding(0, 1)

	statusStyle  = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(recoverColor)
	successStyle = lipgloss.NewStyle().Foreground(readyColor)
	warningStyle = lipgloss.NewStyle().Foreground(cautionColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	helpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// badgeStyles colours a readiness status; anything else renders grey
var badgeStyles = map[analysis.ReadinessStatus]lipgloss.Style{
	analysis.ReadinessGreen:  badge(lightColor, readyColor),
	analysis.ReadinessYellow: badge(darkColor, cautionColor),
	analysis.ReadinessRed:    badge(lightColor, recoverColor),
}

func badge(fg, bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(fg).Background(bg).Padding(0, 1)
}

// RenderStatusBadge renders GREEN/YELLOW/RED as a coloured Ready/Caution/Recover label
func RenderStatusBadge(status string) string {
	s := analysis.ReadinessStatus(status)
	style, ok := badgeStyles[s]
	if !ok {
		style = lipgloss.NewStyle().Foreground(lightColor).Background(mutedColor).Padding(0, 1)
	}
	return style.Render(analysis.ReadinessLabel(s))
}

// RenderMetric renders a label/value row. A note starting with + or - is
// coloured as a change against baseline.
func RenderMetric(label, value, note string) string {
	noteStyle := mutedStyle
	switch {
	case strings.HasPrefix(note, "+"):
		noteStyle = successStyle
	case strings.HasPrefix(note, "-"):
		noteStyle = errorStyle
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
		noteStyle.Render(" "+note),
	)
}

// RenderProgressBar renders fraction (0..1) of width cells
func RenderProgressBar(fraction float64, width int) string {
	filled := min(max(int(fraction*float64(width)), 0), width)
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
