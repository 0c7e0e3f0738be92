// Package components holds small bubbletea widgets used by the preview.
package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/worksheet/internal/ui/theme"
)

// TextInput is a single-line prompt with an inline error. With NumericOnly
// set, printable non-digit keys are dropped before they reach the input.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
	errMsg      string
}

// NewTextInput returns an unfocused input. limit caps the number of
// characters when positive.
func NewTextInput(placeholder string, numericOnly bool, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = max(limit, 0)
	return TextInput{Model: ti, NumericOnly: numericOnly}
}

// Focus starts accepting keys and clears any previous error.
func (t *TextInput) Focus() tea.Cmd {
	t.errMsg = ""
	return t.Model.Focus()
}

// Blur stops accepting keys and empties the input.
func (t *TextInput) Blur() {
	t.Model.Blur()
	t.Model.SetValue("")
}

func (t TextInput) Focused() bool { return t.Model.Focused() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && t.NumericOnly && rejects(key.Text) {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// rejects reports whether typed text contains anything but ASCII digits. Keys
// without text (arrows, backspace) pass through.
func rejects(text string) bool {
	for _, r := range text {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

func (t TextInput) View() string {
	if t.errMsg == "" {
		return t.Model.View()
	}
	return t.Model.View() + "  " + theme.Failure.Render(t.errMsg)
}

// SetError shows msg next to the input until the next Focus.
func (t *TextInput) SetError(msg string) { t.errMsg = msg }

func (t TextInput) Value() string { return t.Model.Value() }

func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Model.Value())
}
