// Package theme holds the colors and text styles of the CLI output.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyreport/internal/badges"
)

var (
	Primary   = lipgloss.Color("#8B5CF6") // purple
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F97316") // orange
	Success   = lipgloss.Color("#22C55E")
	Warning   = lipgloss.Color("#EAB308")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary)

	Heading = lipgloss.NewStyle().Bold(true).Foreground(Secondary)

	Label = lipgloss.NewStyle().Foreground(TextDim)

	Value = lipgloss.NewStyle().Foreground(Text).Bold(true)

	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	Warn = lipgloss.NewStyle().Foreground(Warning)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// ForPercent colors a percentage by the same tiers the reports use.
func ForPercent(p float64) color.Color {
	switch {
	case p >= 80:
		return Success
	case p >= 60:
		return Secondary
	case p >= 40:
		return Warning
	default:
		return Error
	}
}

// ForRarity colors a badge.
func ForRarity(r badges.Rarity) color.Color {
	switch r {
	case badges.RarityLegendary:
		return Accent
	case badges.RarityEpic:
		return Primary
	case badges.RarityRare:
		return Secondary
	default:
		return TextDim
	}
}
