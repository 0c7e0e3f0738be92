package arith

import (
	"fmt"
	"strings"
)

// Range is an inclusive integer interval.
type Range struct {
	Lo int
	Hi int
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Lo && n <= r.Hi
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Lo, r.Hi)
}

var (
	OneDigit   = Range{Lo: 1, Hi: 9}
	TwoDigit   = Range{Lo: 10, Hi: 99}
	ThreeDigit = Range{Lo: 100, Hi: 999}
)

// Span is the pair of ranges a digit mode draws operands from.
// Small is never above Large.
type Span struct {
	Small Range
	Large Range
}

// Mixed reports whether the two operands come from different ranges.
func (s Span) Mixed() bool {
	return s.Small != s.Large
}

// DigitMode selects operand magnitudes. The string value is the wire form
// ("2x3" means one two-digit and one three-digit operand).
type DigitMode string

const (
	OneOne     DigitMode = "1x1"
	OneTwo     DigitMode = "1x2"
	TwoTwo     DigitMode = "2x2"
	TwoThree   DigitMode = "2x3"
	ThreeThree DigitMode = "3x3"
)

var spans = map[DigitMode]Span{
	OneOne:     {Small: OneDigit, Large: OneDigit},
	OneTwo:     {Small: OneDigit, Large: TwoDigit},
	TwoTwo:     {Small: TwoDigit, Large: TwoDigit},
	TwoThree:   {Small: TwoDigit, Large: ThreeDigit},
	ThreeThree: {Small: ThreeDigit, Large: ThreeDigit},
}

// DigitModes lists every supported digit mode, smallest operands first.
func DigitModes() []DigitMode {
	return []DigitMode{OneOne, OneTwo, TwoTwo, TwoThree, ThreeThree}
}

// Span returns the operand ranges for the mode.
func (m DigitMode) Span() (Span, bool) {
	s, ok := spans[m]
	return s, ok
}

// Label is the display name used on printed worksheets.
func (m DigitMode) Label() string {
	switch m {
	case OneOne:
		return "1자리 & 1자리"
	case OneTwo:
		return "1자리 & 2자리"
	case TwoTwo:
		return "2자리 & 2자리"
	case TwoThree:
		return "2자리 & 3자리"
	case ThreeThree:
		return "3자리 & 3자리"
	}
	return string(m)
}

// ParseDigitMode converts the wire form to a DigitMode.
func ParseDigitMode(s string) (DigitMode, error) {
	m := DigitMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := spans[m]; !ok {
		return "", &ConfigError{Field: "digits", Value: s, Reason: "unknown digit mode"}
	}
	return m, nil
}

// UnmarshalText accepts the same spellings as ParseDigitMode.
func (m *DigitMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDigitMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Operation selects which operators a batch may use.
type Operation string

const (
	Addition       Operation = "addition"
	Subtraction    Operation = "subtraction"
	Multiplication Operation = "multiplication"
	// Mixed alternates between addition and subtraction.
	Mixed Operation = "mixed"
)

// Operations lists every supported operation mode.
func Operations() []Operation {
	return []Operation{Addition, Subtraction, Multiplication, Mixed}
}

func (o Operation) valid() bool {
	switch o {
	case Addition, Subtraction, Multiplication, Mixed:
		return true
	}
	return false
}

// Allows reports whether op may appear in a batch generated with o.
func (o Operation) Allows(op Operator) bool {
	switch o {
	case Addition:
		return op == Plus
	case Subtraction:
		return op == Minus
	case Multiplication:
		return op == Times
	case Mixed:
		return op == Plus || op == Minus
	}
	return false
}

// Label is the display name used on printed worksheets.
func (o Operation) Label() string {
	switch o {
	case Addition:
		return "덧셈"
	case Subtraction:
		return "뺄셈"
	case Multiplication:
		return "곱셈"
	case Mixed:
		return "혼합"
	}
	return string(o)
}

// ParseOperation converts the wire form to an Operation.
func ParseOperation(s string) (Operation, error) {
	o := Operation(strings.ToLower(strings.TrimSpace(s)))
	if !o.valid() {
		return "", &ConfigError{Field: "operation", Value: s, Reason: "unknown operation"}
	}
	return o, nil
}

// UnmarshalText accepts the same spellings as ParseOperation.
func (o *Operation) UnmarshalText(text []byte) error {
	parsed, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Operator is the symbol printed between the operands.
type Operator string

const (
	Plus  Operator = "+"
	Minus Operator = "-"
	Times Operator = "×"
)

// ParseOperator accepts the printed symbol. "*" and "x" are read as Times.
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case "+":
		return Plus, nil
	case "-":
		return Minus, nil
	case "×", "*", "x":
		return Times, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Apply computes left op right.
func (op Operator) Apply(left, right int) int {
	switch op {
	case Minus:
		return left - right
	case Times:
		return left * right
	default:
		return left + right
	}
}
