// Package theme holds the colors shared by the terminal renderer and the
// preview.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Math    = lipgloss.Color("#2563EB")
	Hanja   = lipgloss.Color("#D97706")
	English = lipgloss.Color("#059669")

	Error   = lipgloss.Color("#F43F5E")
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	BgCard  = lipgloss.Color("#1E293B")
	Border  = lipgloss.Color("#334155")
)

var subjectAccent = map[string]color.Color{
	"math":    Math,
	"hanja":   Hanja,
	"english": English,
}

// ForSubject returns the accent color of a subject, or TextDim.
func ForSubject(subject string) color.Color {
	if c, ok := subjectAccent[subject]; ok {
		return c
	}
	return TextDim
}

var (
	Hint    = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Failure = lipgloss.NewStyle().Foreground(Error).Bold(true)
)
