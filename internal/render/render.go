// Package render turns a worksheet into print-ready text or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/density"
	"github.com/abhisek/worksheet/internal/ui/theme"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// DefaultWidth is the page width used when Options.Width is not set.
const DefaultWidth = 96

const (
	writingBoxes = 8
	writingLines = 4
)

// Options controls text rendering.
type Options struct {
	AnswerKey bool
	// Color enables bold text and subject colors. Keep it off for files
	// and HTTP responses.
	Color bool
	Width int
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	cell   lipgloss.Style
	answer lipgloss.Style
}

func newStyles(subject worksheet.Subject, opts Options, layout density.Layout) styles {
	cellWidth := opts.width()/layout.Columns - 2
	s := styles{
		title: lipgloss.NewStyle().Width(opts.width()).Align(lipgloss.Center),
		label: lipgloss.NewStyle().Width(opts.width()).Align(lipgloss.Center),
		cell: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Width(cellWidth).
			Padding(layout.Padding, 1),
		answer: lipgloss.NewStyle(),
	}
	if opts.Color {
		accent := theme.ForSubject(string(subject))
		s.title = s.title.Bold(true).Foreground(accent)
		s.label = s.label.Foreground(theme.TextDim)
		s.cell = s.cell.BorderForeground(theme.Border)
		s.answer = s.answer.Bold(true).Foreground(accent)
	}
	return s
}

// Text writes the print-ready worksheet to w.
func Text(w io.Writer, sheet *worksheet.Worksheet, opts Options) error {
	_, err := io.WriteString(w, String(sheet, opts)+"\n")
	return err
}

// String renders the worksheet as text.
func String(sheet *worksheet.Worksheet, opts Options) string {
	layout := density.For(sheet)
	st := newStyles(sheet.Subject, opts, layout)

	var b strings.Builder
	b.WriteString(st.title.Render(sheet.Title))
	b.WriteString("\n")
	b.WriteString(st.label.Render(sheet.Label))
	b.WriteString("\n\n")
	b.WriteString(infoBoxes())
	b.WriteString("\n\n")
	b.WriteString(grid(cells(sheet, layout), layout.Columns, st.cell))

	if opts.AnswerKey {
		b.WriteString("\n\n")
		b.WriteString(st.answer.Render(AnswerKeyHeading))
		b.WriteString("\n")
		b.WriteString(answerLines(sheet.AnswerKey(), opts.width()))
	}
	return b.String()
}

// AnswerKeyHeading is printed above the answer key.
const AnswerKeyHeading = "정답 확인 (Answer Key)"

func infoBoxes() string {
	return strings.Join([]string{
		"이름 (Name): __________",
		"날짜 (Date): __________",
		"점수 (Score): ______",
	}, "    ")
}

func grid(items []string, columns int, cell lipgloss.Style) string {
	if len(items) == 0 {
		return ""
	}
	rows := make([]string, 0, (len(items)+columns-1)/columns)
	for start := 0; start < len(items); start += columns {
		end := min(start+columns, len(items))
		row := make([]string, 0, end-start)
		for _, item := range items[start:end] {
			row = append(row, cell.Render(item))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cells(sheet *worksheet.Worksheet, layout density.Layout) []string {
	out := make([]string, 0, sheet.Len())
	switch sheet.Subject {
	case worksheet.Math:
		vertical := sheet.Math != nil && sheet.Math.Format == worksheet.Vertical
		for i, p := range sheet.MathProblems {
			if vertical {
				out = append(out, verticalMath(i+1, p))
			} else {
				out = append(out, horizontalMath(i+1, p, layout.BlankWidth))
			}
		}
	case worksheet.Hanja:
		for i, p := range sheet.HanjaProblems {
			out = append(out, hanjaCell(i+1, p, sheet.Hanja.Type, layout.BlankWidth))
		}
	case worksheet.English:
		for i, p := range sheet.EnglishProblems {
			out = append(out, englishCell(i+1, p, sheet.English.Type, layout.BlankWidth))
		}
	}
	return out
}

func blank(width int) string {
	return strings.Repeat("_", width)
}

func horizontalMath(n int, p arith.Problem, blankWidth int) string {
	return fmt.Sprintf("%d. %d %s %d = %s", n, p.Left, p.Op, p.Right, blank(blankWidth))
}

func verticalMath(n int, p arith.Problem) string {
	width := max(len(fmt.Sprint(p.Left)), len(fmt.Sprint(p.Right)))
	lines := []string{
		fmt.Sprintf("%d.", n),
		fmt.Sprintf("  %*d", width, p.Left),
		fmt.Sprintf("%s %*d", p.Op, width, p.Right),
		strings.Repeat("─", width+2),
		"",
	}
	return strings.Join(lines, "\n")
}

func options(opts []string) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = fmt.Sprintf("(%d) %s", i+1, o)
	}
	return strings.Join(parts, "   ")
}

func hanjaCell(n int, p worksheet.HanjaProblem, kind worksheet.HanjaType, blankWidth int) string {
	switch kind {
	case worksheet.HanjaMultipleChoice:
		return fmt.Sprintf("%d. %s 의 뜻과 음은?\n%s", n, p.Character, options(p.Options))
	case worksheet.HanjaWritingPractice:
		return fmt.Sprintf("%d. %s (%s %s)\n%s", n, p.Character, p.Meaning, p.Reading, writingRow(p.Character))
	default:
		return fmt.Sprintf("%d. %s   뜻: %s   음: %s", n, p.Character, blank(blankWidth), blank(blankWidth))
	}
}

// writingRow draws a row of practice boxes with the model character in the
// first one.
func writingRow(model string) string {
	seg := strings.Repeat("─", 4)
	top := "┌" + strings.Repeat(seg+"┬", writingBoxes-1) + seg + "┐"
	bottom := "└" + strings.Repeat(seg+"┴", writingBoxes-1) + seg + "┘"

	pad := max(0, 4-lipgloss.Width(model))
	mid := "│" + strings.Repeat(" ", pad/2) + model + strings.Repeat(" ", pad-pad/2) + "│"
	mid += strings.Repeat("    │", writingBoxes-1)
	return strings.Join([]string{top, mid, bottom}, "\n")
}

func englishCell(n int, p worksheet.EnglishProblem, kind worksheet.EnglishType, blankWidth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", n, p.Question)
	if kind.MultipleChoice() && len(p.Options) > 0 {
		b.WriteString("\n")
		b.WriteString(options(p.Options))
	} else {
		for range writingLines {
			b.WriteString("\n")
			b.WriteString(blank(blankWidth * 6))
		}
	}
	if p.Hint != "" {
		fmt.Fprintf(&b, "\n(Hint: %s)", p.Hint)
	}
	return b.String()
}

func answerLines(key []worksheet.AnswerEntry, width int) string {
	var lines []string
	var line string
	for _, e := range key {
		item := fmt.Sprintf("%d. %s", e.N, e.Answer)
		switch {
		case line == "":
			line = item
		case lipgloss.Width(line)+2+lipgloss.Width(item) > width:
			lines = append(lines, line)
			line = item
		default:
			line += "  " + item
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// JSON writes the worksheet as indented JSON.
func JSON(w io.Writer, sheet *worksheet.Worksheet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sheet); err != nil {
		return fmt.Errorf("encode worksheet: %w", err)
	}
	return nil
}
