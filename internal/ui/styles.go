package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Lime is the single accent color.
const (
	ColorLime     = "154" // Primary accent (#AFFF00)
	ColorLimeDim  = "106" // Dimmed lime for inactive/borders
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorYellow   = "220" // Warnings
)

// Styles holds all UI styles for terminal rendering.
type Styles struct {
	// Text styles
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
	Active  lipgloss.Style

	// Result styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Score    lipgloss.Style
	Rule     lipgloss.Style
	Prompt   lipgloss.Style

	Border lipgloss.Style
	Label  lipgloss.Style
}

// DefaultStyles returns styled components for interactive terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),

		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Score:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Rule:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Prompt:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles leaves text untouched, for pipes and NO_COLOR.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header: plain, Success: plain, Warning: plain, Dim: plain, Active: plain,
		Title: plain, Subtitle: plain, Score: plain, Rule: plain, Prompt: plain,
		Border: plain, Label: plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
