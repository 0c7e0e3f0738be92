package worksheet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/worksheet/internal/arith"
)

// Source records how the problems of a worksheet were produced.
type Source string

const (
	SourceAI    Source = "ai"
	SourceLocal Source = "local"
)

// HanjaProblem is one Chinese character exercise.
type HanjaProblem struct {
	ID        int    `json:"id"`
	Character string `json:"character"`
	Meaning   string `json:"meaning"`
	Reading   string `json:"reading"`
	// Options holds four choices for multiple choice items, empty otherwise.
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
}

// EnglishProblem is one English exercise.
type EnglishProblem struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
	Hint     string   `json:"hint,omitempty"`
}

// Worksheet is a generated batch of problems for one subject together with
// the settings that produced it. Exactly one settings/problems pair is set,
// matching Subject.
type Worksheet struct {
	ID        string    `json:"id"`
	Subject   Subject   `json:"subject"`
	Title     string    `json:"title"`
	Label     string    `json:"label"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`

	Math    *MathSettings    `json:"math,omitempty"`
	Hanja   *HanjaSettings   `json:"hanja,omitempty"`
	English *EnglishSettings `json:"english,omitempty"`

	MathProblems    []arith.Problem  `json:"math_problems,omitempty"`
	HanjaProblems   []HanjaProblem   `json:"hanja_problems,omitempty"`
	EnglishProblems []EnglishProblem `json:"english_problems,omitempty"`
}

func newSheet(subject Subject, label string, source Source) *Worksheet {
	return &Worksheet{
		ID:        uuid.New().String(),
		Subject:   subject,
		Title:     subject.Title(),
		Label:     label,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// NewMath wraps a batch of arithmetic problems.
func NewMath(s MathSettings, problems []arith.Problem, source Source) *Worksheet {
	w := newSheet(Math, s.Label(), source)
	w.Math = &s
	w.MathProblems = problems
	return w
}

// NewHanja wraps a batch of Chinese character problems.
func NewHanja(s HanjaSettings, problems []HanjaProblem) *Worksheet {
	w := newSheet(Hanja, s.Label(), SourceAI)
	w.Hanja = &s
	w.HanjaProblems = problems
	return w
}

// NewEnglish wraps a batch of English problems.
func NewEnglish(s EnglishSettings, problems []EnglishProblem) *Worksheet {
	w := newSheet(English, s.Label(), SourceAI)
	w.English = &s
	w.EnglishProblems = problems
	return w
}

// Len returns the number of problems on the sheet.
func (w *Worksheet) Len() int {
	switch w.Subject {
	case Math:
		return len(w.MathProblems)
	case Hanja:
		return len(w.HanjaProblems)
	case English:
		return len(w.EnglishProblems)
	}
	return 0
}

// SingleColumn reports whether each problem needs a full-width row.
func (w *Worksheet) SingleColumn() bool {
	switch {
	case w.Subject == Hanja && w.Hanja != nil:
		return w.Hanja.Type == HanjaWritingPractice
	case w.Subject == English && w.English != nil:
		return w.English.Type == EnglishTranslation
	}
	return false
}

// AnswerEntry is one line of the answer key.
type AnswerEntry struct {
	N      int    `json:"n"`
	Answer string `json:"answer"`
}

// AnswerKey lists the answers in problem order, numbered from 1.
func (w *Worksheet) AnswerKey() []AnswerEntry {
	key := make([]AnswerEntry, 0, w.Len())
	switch w.Subject {
	case Math:
		for i, p := range w.MathProblems {
			key = append(key, AnswerEntry{N: i + 1, Answer: strconv.Itoa(p.Answer)})
		}
	case Hanja:
		for i, p := range w.HanjaProblems {
			answer := p.Answer
			if answer == "" {
				answer = fmt.Sprintf("%s %s", p.Meaning, p.Reading)
			}
			key = append(key, AnswerEntry{N: i + 1, Answer: answer})
		}
	case English:
		for i, p := range w.EnglishProblems {
			key = append(key, AnswerEntry{N: i + 1, Answer: p.Answer})
		}
	}
	return key
}

// Validate checks the settings carried by the sheet.
func (w *Worksheet) Validate() error {
	switch w.Subject {
	case Math:
		if w.Math == nil {
			return fmt.Errorf("%w: math settings missing", ErrInvalidConfig)
		}
		return w.Math.Validate()
	case Hanja:
		if w.Hanja == nil {
			return fmt.Errorf("%w: hanja settings missing", ErrInvalidConfig)
		}
		return w.Hanja.Validate()
	case English:
		if w.English == nil {
			return fmt.Errorf("%w: english settings missing", ErrInvalidConfig)
		}
		return w.English.Validate()
	}
	return fmt.Errorf("%w: unknown subject %q", ErrInvalidConfig, w.Subject)
}
