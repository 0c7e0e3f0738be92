package problemgen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// MathCheckValidator recomputes every answer and checks operand ranges,
// operators and non-negative subtraction.
type MathCheckValidator struct{}

func (v MathCheckValidator) Name() string { return "math-check" }

func (v MathCheckValidator) Validate(batch []arith.Problem, s worksheet.MathSettings) *ValidationError {
	cfg := s.Arith()
	for i, p := range batch {
		if err := arith.Check(p, cfg); err != nil {
			return &ValidationError{Validator: v.Name(), Item: i + 1, Message: err.Error(), Retryable: true}
		}
	}
	return nil
}

// HanjaStructuralValidator requires the character, meaning, reading and
// answer of every item.
type HanjaStructuralValidator struct{}

func (v HanjaStructuralValidator) Name() string { return "structural" }

func (v HanjaStructuralValidator) Validate(batch []worksheet.HanjaProblem, _ worksheet.HanjaSettings) *ValidationError {
	for i, p := range batch {
		var missing string
		switch {
		case strings.TrimSpace(p.Character) == "":
			missing = "character"
		case strings.TrimSpace(p.Meaning) == "":
			missing = "meaning"
		case strings.TrimSpace(p.Reading) == "":
			missing = "reading"
		case strings.TrimSpace(p.Answer) == "":
			missing = "answer"
		}
		if missing != "" {
			return &ValidationError{Validator: v.Name(), Item: i + 1, Message: missing + " is empty", Retryable: true}
		}
	}
	return nil
}

// HanjaChoiceValidator enforces the multiple choice shape when the
// worksheet type asks for it.
type HanjaChoiceValidator struct{}

func (v HanjaChoiceValidator) Name() string { return "choices" }

func (v HanjaChoiceValidator) Validate(batch []worksheet.HanjaProblem, s worksheet.HanjaSettings) *ValidationError {
	if s.Type != worksheet.HanjaMultipleChoice {
		return nil
	}
	for i, p := range batch {
		if msg := checkChoices(p.Options, p.Answer); msg != "" {
			return &ValidationError{Validator: v.Name(), Item: i + 1, Message: msg, Retryable: true}
		}
	}
	return nil
}

// EnglishStructuralValidator requires a question and a real answer. An
// answer made only of digits is an option index, not the answer text.
type EnglishStructuralValidator struct{}

func (v EnglishStructuralValidator) Name() string { return "answer-format" }

func (v EnglishStructuralValidator) Validate(batch []worksheet.EnglishProblem, _ worksheet.EnglishSettings) *ValidationError {
	for i, p := range batch {
		switch {
		case strings.TrimSpace(p.Question) == "":
			return &ValidationError{Validator: v.Name(), Item: i + 1, Message: "question is empty", Retryable: true}
		case strings.TrimSpace(p.Answer) == "":
			return &ValidationError{Validator: v.Name(), Item: i + 1, Message: "answer is empty", Retryable: true}
		case isDigits(strings.TrimSpace(p.Answer)):
			return &ValidationError{
				Validator: v.Name(),
				Item:      i + 1,
				Message:   fmt.Sprintf("answer %q is an option number, not the answer text", p.Answer),
				Retryable: true,
			}
		}
	}
	return nil
}

// EnglishChoiceValidator enforces the multiple choice shape for vocabulary
// and sentence completion worksheets.
type EnglishChoiceValidator struct{}

func (v EnglishChoiceValidator) Name() string { return "choices" }

func (v EnglishChoiceValidator) Validate(batch []worksheet.EnglishProblem, s worksheet.EnglishSettings) *ValidationError {
	if !s.Type.MultipleChoice() {
		return nil
	}
	for i, p := range batch {
		if msg := checkChoices(p.Options, p.Answer); msg != "" {
			return &ValidationError{Validator: v.Name(), Item: i + 1, Message: msg, Retryable: true}
		}
	}
	return nil
}

// checkChoices returns a description of what is wrong with a multiple
// choice item, or "" if it is well formed.
func checkChoices(options []string, answer string) string {
	if len(options) != 4 {
		return fmt.Sprintf("multiple choice must have exactly 4 options, got %d", len(options))
	}
	seen := make(map[string]bool, 4)
	found := false
	for i, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return fmt.Sprintf("option %d is empty", i+1)
		}
		if seen[o] {
			return fmt.Sprintf("duplicate option %q", o)
		}
		seen[o] = true
		if o == strings.TrimSpace(answer) {
			found = true
		}
	}
	if !found {
		return fmt.Sprintf("answer %q is not among the options", answer)
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
