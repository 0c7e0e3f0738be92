// Package layout draws the preview chrome: a header bar, a scrollable body
// and a footer of key hints.
package layout

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/worksheet/internal/ui/theme"
)

// Smallest terminal the preview draws into.
const (
	MinWidth  = 60
	MinHeight = 16
)

type KeyHint struct {
	Key         string
	Description string
}

// Frame is one screen of the preview. Extra is drawn above the footer bar
// (the count prompt) and is not part of the body.
type Frame struct {
	Title  string
	Status string
	Accent color.Color
	Hints  []KeyHint
	Extra  string
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

func (f Frame) header(width int) string {
	title := lipgloss.NewStyle().Foreground(f.Accent).Bold(true).Render("  " + f.Title)
	status := lipgloss.NewStyle().Foreground(theme.TextDim).Render(f.Status)

	// Two columns of border and two of padding.
	gap := max(width-4-lipgloss.Width(title)-lipgloss.Width(status), 1)
	return bar(width).Render(title + strings.Repeat(" ", gap) + status)
}

func (f Frame) footer(width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(f.Hints))
	for i, h := range f.Hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	out := bar(width).Render("  " + strings.Join(parts, "   "))
	if f.Extra != "" {
		out = f.Extra + "\n" + out
	}
	return out
}

// BodyHeight is the number of body rows that fit on a width x height screen.
func (f Frame) BodyHeight(width, height int) int {
	return max(height-lipgloss.Height(f.header(width))-lipgloss.Height(f.footer(width)), 0)
}

// Render draws the frame with body clipped or padded to the space left.
// Screens below the minimum size get a resize notice instead.
func (f Frame) Render(body string, width, height int) string {
	if width < MinWidth || height < MinHeight {
		return lipgloss.NewStyle().
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Width(width).
			Height(height).
			Render(fmt.Sprintf(
				"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
				MinWidth, MinHeight, width, height,
			))
	}

	content := lipgloss.NewStyle().
		Width(width).
		Height(f.BodyHeight(width, height)).
		MaxHeight(f.BodyHeight(width, height)).
		Render(body)
	return f.header(width) + "\n" + content + "\n" + f.footer(width)
}
