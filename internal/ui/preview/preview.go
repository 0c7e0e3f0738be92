// Package preview is the interactive terminal preview of a worksheet.
package preview

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/worksheet/internal/render"
	"github.com/abhisek/worksheet/internal/ui/components"
	"github.com/abhisek/worksheet/internal/ui/layout"
	"github.com/abhisek/worksheet/internal/ui/theme"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// Generator builds a worksheet from the request.
type Generator interface {
	GenerateMath(ctx context.Context, s worksheet.MathSettings) (*worksheet.Worksheet, error)
	GenerateHanja(ctx context.Context, s worksheet.HanjaSettings) (*worksheet.Worksheet, error)
	GenerateEnglish(ctx context.Context, s worksheet.EnglishSettings) (*worksheet.Worksheet, error)
}

// Saver persists a worksheet. store.WorksheetRepo implements it.
type Saver interface {
	Save(ctx context.Context, w *worksheet.Worksheet) error
}

// Request selects what the preview generates. Only the settings of
// Subject are used.
type Request struct {
	Subject worksheet.Subject
	Math    worksheet.MathSettings
	Hanja   worksheet.HanjaSettings
	English worksheet.EnglishSettings
}

func (r Request) count() int {
	switch r.Subject {
	case worksheet.Hanja:
		return r.Hanja.Count
	case worksheet.English:
		return r.English.Count
	}
	return r.Math.Count
}

func (r *Request) setCount(n int) {
	switch r.Subject {
	case worksheet.Hanja:
		r.Hanja.Count = n
	case worksheet.English:
		r.English.Count = n
	default:
		r.Math.Count = n
	}
}

func (r Request) validate() error {
	switch r.Subject {
	case worksheet.Hanja:
		return r.Hanja.Validate()
	case worksheet.English:
		return r.English.Validate()
	}
	return r.Math.Validate()
}

// generationTimeout bounds one regenerate.
const generationTimeout = 2 * time.Minute

type generatedMsg struct {
	sheet *worksheet.Worksheet
	err   error
}

type savedMsg struct {
	id  string
	err error
}

// Model is the bubbletea model of the preview.
type Model struct {
	gen   Generator
	saver Saver
	req   Request

	sheet   *worksheet.Worksheet
	answers bool
	loading bool
	status  string
	offset  int

	input  components.TextInput
	width  int
	height int
}

// New creates a preview that generates its first worksheet on Init.
// saver may be nil.
func New(gen Generator, saver Saver, req Request) Model {
	return Model{
		gen:     gen,
		saver:   saver,
		req:     req,
		loading: true,
		status:  "generating...",
		input:   components.NewTextInput("number of problems", true, 3),
	}
}

func (m Model) Init() tea.Cmd {
	return m.generate()
}

// Sheet returns the worksheet on screen, nil before the first generation.
func (m Model) Sheet() *worksheet.Worksheet {
	return m.sheet
}

func (m *Model) generate() tea.Cmd {
	m.loading = true
	m.status = "generating..."
	gen, req := m.gen, m.req
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()

		var (
			sheet *worksheet.Worksheet
			err   error
		)
		switch req.Subject {
		case worksheet.Hanja:
			sheet, err = gen.GenerateHanja(ctx, req.Hanja)
		case worksheet.English:
			sheet, err = gen.GenerateEnglish(ctx, req.English)
		default:
			sheet, err = gen.GenerateMath(ctx, req.Math)
		}
		return generatedMsg{sheet: sheet, err: err}
	}
}

func (m Model) save() tea.Cmd {
	saver, sheet := m.saver, m.sheet
	return func() tea.Msg {
		return savedMsg{id: sheet.ID, err: saver.Save(context.Background(), sheet)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case generatedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "generation failed: " + msg.err.Error()
			return m, nil
		}
		m.sheet = msg.sheet
		m.offset = 0
		m.status = fmt.Sprintf("%d problems (%s)", m.sheet.Len(), m.sheet.Source)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "saved " + msg.id
		}
		return m, nil

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "a":
		m.answers = !m.answers
	case "f":
		if m.req.Subject == worksheet.Math {
			m.toggleFormat()
		}
	case "r":
		if !m.loading {
			cmd := m.generate()
			return m, cmd
		}
	case "c":
		if !m.loading {
			cmd := m.input.Focus()
			return m, cmd
		}
	case "s":
		if m.saver != nil && m.sheet != nil {
			return m, m.save()
		}
	case "up", "k":
		m.offset--
	case "down", "j":
		m.offset++
	case "pgup":
		m.offset -= m.pageSize()
	case "pgdown", "space":
		m.offset += m.pageSize()
	case "home", "g":
		m.offset = 0
	}
	m.clampOffset()
	return m, nil
}

// toggleFormat switches between horizontal and vertical layouts. The
// problems stay the same; only the rendering changes.
func (m *Model) toggleFormat() {
	next := worksheet.Vertical
	if m.req.Math.Format == worksheet.Vertical {
		next = worksheet.Horizontal
	}
	m.req.Math.Format = next
	if m.sheet != nil && m.sheet.Math != nil {
		s := *m.sheet.Math
		s.Format = next
		sheet := *m.sheet
		sheet.Math = &s
		m.sheet = &sheet
	}
	m.offset = 0
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		n, err := m.input.NumericValue()
		if err != nil {
			m.input.SetError("enter a number")
			return m, nil
		}
		req := m.req
		req.setCount(n)
		if err := req.validate(); err != nil {
			m.input.SetError(err.Error())
			return m, nil
		}
		m.req = req
		m.input.Blur()
		cmd := m.generate()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) hints() []layout.KeyHint {
	if m.input.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "a", Description: "Answers"},
	}
	if m.req.Subject == worksheet.Math {
		hints = append(hints, layout.KeyHint{Key: "f", Description: "Format"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "r", Description: "Regenerate"},
		layout.KeyHint{Key: "c", Description: "Count"},
	)
	if m.saver != nil {
		hints = append(hints, layout.KeyHint{Key: "s", Description: "Save"})
	}
	return append(hints,
		layout.KeyHint{Key: "↑↓", Description: "Scroll"},
		layout.KeyHint{Key: "q", Description: "Quit"},
	)
}

func (m Model) body() string {
	if m.sheet == nil {
		return theme.Hint.Render("  " + m.status)
	}
	return render.String(m.sheet, render.Options{
		AnswerKey: m.answers,
		Color:     true,
		Width:     m.width - 2,
	})
}

func (m Model) pageSize() int {
	return max(m.chrome().BodyHeight(m.width, m.height), 1)
}

func (m *Model) clampOffset() {
	lines := strings.Count(m.body(), "\n") + 1
	maxOffset := lines - m.pageSize()
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// chrome is the header and footer around the worksheet body.
func (m Model) chrome() layout.Frame {
	f := layout.Frame{
		Title:  m.req.Subject.Title(),
		Status: m.status,
		Accent: theme.ForSubject(string(m.req.Subject)),
		Hints:  m.hints(),
	}
	if m.sheet != nil {
		f.Title += " · " + m.sheet.Label
	}
	if m.input.Focused() {
		f.Extra = "  Count: " + m.input.View()
	}
	return f
}

func (m Model) frame() string {
	f := m.chrome()
	lines := strings.Split(m.body(), "\n")
	start := min(m.offset, len(lines))
	end := min(start+f.BodyHeight(m.width, m.height), len(lines))
	return f.Render(strings.Join(lines[start:end], "\n"), m.width, m.height)
}

// Run starts the preview program.
func Run(gen Generator, saver Saver, req Request) error {
	_, err := tea.NewProgram(New(gen, saver, req)).Run()
	return err
}
