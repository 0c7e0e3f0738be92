package worksheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/worksheet/internal/arith"
)

// ErrInvalidConfig is wrapped by every settings validation failure.
var ErrInvalidConfig = errors.New("invalid worksheet settings")

// Count limits accepted per subject.
const (
	MaxMathCount    = 100
	MaxHanjaCount   = 40
	MaxEnglishCount = 40
)

// Subject identifies which kind of worksheet is generated.
type Subject string

const (
	Math    Subject = "math"
	Hanja   Subject = "hanja"
	English Subject = "english"
)

// Subjects lists every supported subject.
func Subjects() []Subject {
	return []Subject{Math, Hanja, English}
}

// ParseSubject accepts the wire form. "chinese" is an alias for Hanja.
func ParseSubject(s string) (Subject, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "math":
		return Math, nil
	case "hanja", "chinese":
		return Hanja, nil
	case "english":
		return English, nil
	}
	return "", fmt.Errorf("%w: unknown subject %q", ErrInvalidConfig, s)
}

// Title is the heading printed on worksheets of this subject.
func (s Subject) Title() string {
	switch s {
	case Math:
		return "초등 산수 연산 연습장"
	case Hanja:
		return "한문 급수 학습지"
	case English:
		return "기초 영어 학습지"
	}
	return ""
}

// Format controls how math problems are laid out on the page.
type Format string

const (
	Horizontal Format = "horizontal"
	Vertical   Format = "vertical"
)

// ParseFormat accepts the wire form.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Horizontal, Vertical:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, s)
}

// MathSettings configures an arithmetic worksheet.
type MathSettings struct {
	Count     int             `json:"count" mapstructure:"count" yaml:"count"`
	Digits    arith.DigitMode `json:"digits" mapstructure:"digits" yaml:"digits"`
	Operation arith.Operation `json:"operation" mapstructure:"operation" yaml:"operation"`
	Format    Format          `json:"format" mapstructure:"format" yaml:"format"`
}

// Arith returns the generator config for these settings.
func (s MathSettings) Arith() arith.Config {
	return arith.Config{Count: s.Count, Digits: s.Digits, Operation: s.Operation}
}

// Size returns the requested number of problems.
func (s MathSettings) Size() int { return s.Count }

func (s MathSettings) Validate() error {
	if err := s.Arith().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if s.Count > MaxMathCount {
		return fmt.Errorf("%w: count %d exceeds %d", ErrInvalidConfig, s.Count, MaxMathCount)
	}
	if s.Format != Horizontal && s.Format != Vertical {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, s.Format)
	}
	return nil
}

// Label summarizes the settings for the worksheet header.
func (s MathSettings) Label() string {
	return fmt.Sprintf("%s / %s", s.Digits.Label(), s.Operation.Label())
}

// HanjaGrade is a level of the Korean Hanja proficiency test.
type HanjaGrade string

const (
	Grade8 HanjaGrade = "8"
	Grade7 HanjaGrade = "7"
	Grade6 HanjaGrade = "6"
)

// Label renders the grade the way the test names it, e.g. "8급".
func (g HanjaGrade) Label() string { return string(g) + "급" }

// ParseHanjaGrade accepts "8", "8급" and similar.
func ParseHanjaGrade(s string) (HanjaGrade, error) {
	switch g := HanjaGrade(strings.TrimSuffix(strings.TrimSpace(s), "급")); g {
	case Grade8, Grade7, Grade6:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown hanja grade %q", ErrInvalidConfig, s)
}

// HanjaType selects the kind of Hanja exercise.
type HanjaType string

const (
	HanjaMultipleChoice  HanjaType = "multiple_choice"
	HanjaShortAnswer     HanjaType = "short_answer"
	HanjaWritingPractice HanjaType = "writing_practice"
)

func (t HanjaType) Label() string {
	switch t {
	case HanjaMultipleChoice:
		return "객관식"
	case HanjaShortAnswer:
		return "주관식"
	case HanjaWritingPractice:
		return "쓰기연습"
	}
	return string(t)
}

// ParseHanjaType accepts the wire form.
func ParseHanjaType(s string) (HanjaType, error) {
	switch t := HanjaType(strings.ToLower(strings.TrimSpace(s))); t {
	case HanjaMultipleChoice, HanjaShortAnswer, HanjaWritingPractice:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown hanja type %q", ErrInvalidConfig, s)
}

// HanjaSettings configures a Chinese character worksheet.
type HanjaSettings struct {
	Count int        `json:"count" mapstructure:"count" yaml:"count"`
	Grade HanjaGrade `json:"grade" mapstructure:"grade" yaml:"grade"`
	Type  HanjaType  `json:"type" mapstructure:"type" yaml:"type"`
}

func (s HanjaSettings) Size() int { return s.Count }

func (s HanjaSettings) Validate() error {
	if s.Count <= 0 || s.Count > MaxHanjaCount {
		return fmt.Errorf("%w: count %d outside [1, %d]", ErrInvalidConfig, s.Count, MaxHanjaCount)
	}
	if _, err := ParseHanjaGrade(string(s.Grade)); err != nil {
		return err
	}
	if _, err := ParseHanjaType(string(s.Type)); err != nil {
		return err
	}
	return nil
}

func (s HanjaSettings) Label() string {
	return fmt.Sprintf("%s / %s", s.Grade.Label(), s.Type.Label())
}

// EnglishGrade is the school year the English exercises target.
type EnglishGrade string

const (
	EnglishGrade2 EnglishGrade = "2"
	EnglishGrade3 EnglishGrade = "3"
)

func (g EnglishGrade) Label() string { return string(g) + "학년" }

// ParseEnglishGrade accepts "2", "2학년" and similar.
func ParseEnglishGrade(s string) (EnglishGrade, error) {
	switch g := EnglishGrade(strings.TrimSuffix(strings.TrimSpace(s), "학년")); g {
	case EnglishGrade2, EnglishGrade3:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown english grade %q", ErrInvalidConfig, s)
}

// EnglishType selects the kind of English exercise.
type EnglishType string

const (
	EnglishVocabulary         EnglishType = "vocabulary"
	EnglishSentenceCompletion EnglishType = "sentence_completion"
	EnglishTranslation        EnglishType = "translation"
)

func (t EnglishType) Label() string {
	switch t {
	case EnglishVocabulary:
		return "단어 퀴즈"
	case EnglishSentenceCompletion:
		return "문장 완성"
	case EnglishTranslation:
		return "영작 연습"
	}
	return string(t)
}

// ParseEnglishType accepts the wire form.
func ParseEnglishType(s string) (EnglishType, error) {
	switch t := EnglishType(strings.ToLower(strings.TrimSpace(s))); t {
	case EnglishVocabulary, EnglishSentenceCompletion, EnglishTranslation:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown english type %q", ErrInvalidConfig, s)
}

// EnglishSettings configures an English worksheet.
type EnglishSettings struct {
	Count int          `json:"count" mapstructure:"count" yaml:"count"`
	Grade EnglishGrade `json:"grade" mapstructure:"grade" yaml:"grade"`
	Type  EnglishType  `json:"type" mapstructure:"type" yaml:"type"`
}

func (s EnglishSettings) Size() int { return s.Count }

func (s EnglishSettings) Validate() error {
	if s.Count <= 0 || s.Count > MaxEnglishCount {
		return fmt.Errorf("%w: count %d outside [1, %d]", ErrInvalidConfig, s.Count, MaxEnglishCount)
	}
	if _, err := ParseEnglishGrade(string(s.Grade)); err != nil {
		return err
	}
	if _, err := ParseEnglishType(string(s.Type)); err != nil {
		return err
	}
	return nil
}

func (s EnglishSettings) Label() string {
	return fmt.Sprintf("%s / %s", s.Grade.Label(), s.Type.Label())
}

// MultipleChoice reports whether items of this type carry four options.
func (t EnglishType) MultipleChoice() bool {
	return t == EnglishVocabulary || t == EnglishSentenceCompletion
}
