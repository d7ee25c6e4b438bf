package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"threshold/internal/analysis"
)

// Palette. The three zone colors follow alpha1 from aerobic to anaerobic.
var (
	accentColor     = lipgloss.Color("#7C3AED") // Purple
	aerobicColor    = lipgloss.Color("#10B981") // Green
	transitionColor = lipgloss.Color("#F59E0B") // Amber
	anaerobicColor  = lipgloss.Color("#EF4444") // Red
	dimColor        = lipgloss.Color("#6B7280") // Gray
	brightColor     = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brightColor).
			Background(accentColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle         = lipgloss.NewStyle().Foreground(dimColor).MarginBottom(1)
	navActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	navInactiveStyle = lipgloss.NewStyle().Foreground(dimColor)

	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(aerobicColor)
	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(dimColor).
				Width(20)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(brightColor)

	noteStyle = lipgloss.NewStyle().Foreground(dimColor)

	tableHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1)
	tableRowStyle      = lipgloss.NewStyle().Padding(0, 1)
	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(accentColor).
				Foreground(brightColor).
				Padding(0, 1)

	statusStyle  = lipgloss.NewStyle().Foreground(dimColor).MarginTop(1)
	errorStyle   = lipgloss.NewStyle().Foreground(anaerobicColor)
	successStyle = lipgloss.NewStyle().Foreground(aerobicColor)
	warningStyle = lipgloss.NewStyle().Foreground(transitionColor)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(dimColor)

	gaugeEmptyStyle = lipgloss.NewStyle().Foreground(dimColor)
)

// zoneStyle colors text by an alpha1 classification name
func zoneStyle(class string) lipgloss.Style {
	switch class {
	case analysis.BelowVT1.String():
		return lipgloss.NewStyle().Foreground(aerobicColor)
	case analysis.AtVT1.String():
		return lipgloss.NewStyle().Foreground(transitionColor)
	case analysis.AboveVT1.String():
		return lipgloss.NewStyle().Foreground(anaerobicColor)
	default:
		return noteStyle
	}
}

// tierStyle colors text by a confidence tier name
func tierStyle(tier string) lipgloss.Style {
	switch tier {
	case analysis.TierHigh.String():
		return lipgloss.NewStyle().Foreground(aerobicColor).Bold(true)
	case analysis.TierMedium.String():
		return lipgloss.NewStyle().Foreground(transitionColor)
	case analysis.TierLow.String():
		return lipgloss.NewStyle().Foreground(anaerobicColor)
	default:
		return noteStyle
	}
}

// balanceColor shades a W' gauge by the fraction of the tank left
func balanceColor(fraction float64) lipgloss.Color {
	switch {
	case fraction >= 0.5:
		return aerobicColor
	case fraction >= 0.2:
		return transitionColor
	default:
		return anaerobicColor
	}
}

// RenderMetric renders a label and value, followed by an already styled note
func RenderMetric(label, value, note string) string {
	parts := []string{metricLabelStyle.Render(label), metricValueStyle.Render(value)}
	if note != "" {
		parts = append(parts, " "+note)
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

// RenderSection renders a section divider with a title
func RenderSection(title string, width int) string {
	rule := width - len(title) - 4
	if rule < 4 {
		rule = 4
	}
	return sectionStyle.Render("── " + title + " " + strings.Repeat("─", rule))
}

// RenderGauge renders a W' tank gauge, fraction in [0, 1]
func RenderGauge(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))

	full := lipgloss.NewStyle().Foreground(balanceColor(fraction))
	return full.Render(strings.Repeat("█", filled)) +
		gaugeEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
