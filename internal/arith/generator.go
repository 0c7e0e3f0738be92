package arith

import (
	"fmt"
	"math/rand/v2"
)

// Problem is one arithmetic exercise with its precomputed answer.
type Problem struct {
	ID     int      `json:"id"`
	Left   int      `json:"left"`
	Right  int      `json:"right"`
	Op     Operator `json:"op"`
	Answer int      `json:"answer"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%d %s %d", p.Left, p.Op, p.Right)
}

// Config describes one batch of problems.
type Config struct {
	Count     int       `json:"count"`
	Digits    DigitMode `json:"digits"`
	Operation Operation `json:"operation"`
}

// Validate rejects configurations the generator cannot honor.
func (c Config) Validate() error {
	if c.Count <= 0 {
		return &ConfigError{Field: "count", Value: c.Count, Reason: "must be positive"}
	}
	if _, ok := c.Digits.Span(); !ok {
		return &ConfigError{Field: "digits", Value: c.Digits, Reason: "unknown digit mode"}
	}
	if !c.Operation.valid() {
		return &ConfigError{Field: "operation", Value: c.Operation, Reason: "unknown operation"}
	}
	return nil
}

// Generator draws problems from its own random source. A Generator is not
// safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator reading from src. A nil src gets a
// randomly seeded PCG source.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// Generate produces exactly cfg.Count problems with IDs 1..Count.
func Generate(cfg Config) ([]Problem, error) {
	return NewGenerator(nil).Generate(cfg)
}

// Generate produces exactly cfg.Count problems with IDs 1..Count. The
// config is validated up front; a valid config never fails.
func (g *Generator) Generate(cfg Config) ([]Problem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	span, _ := cfg.Digits.Span()

	problems := make([]Problem, cfg.Count)
	for i := range problems {
		left, right := g.operands(span)
		op := g.operator(cfg.Operation)
		problems[i] = Normalize(Problem{
			ID:    i + 1,
			Left:  left,
			Right: right,
			Op:    op,
		})
	}
	return problems, nil
}

func (g *Generator) operands(span Span) (int, int) {
	a := g.draw(span.Small)
	b := g.draw(span.Large)
	if span.Mixed() && g.rng.IntN(2) == 0 {
		a, b = b, a
	}
	return a, b
}

func (g *Generator) draw(r Range) int {
	return r.Lo + g.rng.IntN(r.Hi-r.Lo+1)
}

func (g *Generator) operator(op Operation) Operator {
	switch op {
	case Subtraction:
		return Minus
	case Multiplication:
		return Times
	case Mixed:
		if g.rng.IntN(2) == 0 {
			return Plus
		}
		return Minus
	default:
		return Plus
	}
}

// Normalize puts the larger operand first for subtraction and fills in the
// answer. It is the only repair step: one conditional swap, no resampling.
func Normalize(p Problem) Problem {
	if p.Op == Minus && p.Left < p.Right {
		p.Left, p.Right = p.Right, p.Left
	}
	p.Answer = p.Op.Apply(p.Left, p.Right)
	return p
}

// Check verifies a problem produced elsewhere against cfg: the operator is
// allowed, the operands are in range, the answer is right and subtraction
// does not go negative.
func Check(p Problem, cfg Config) error {
	span, ok := cfg.Digits.Span()
	if !ok {
		return &ConfigError{Field: "digits", Value: cfg.Digits, Reason: "unknown digit mode"}
	}
	if !cfg.Operation.Allows(p.Op) {
		return fmt.Errorf("%w: operator %q not allowed for %s", ErrInvalidProblem, p.Op, cfg.Operation)
	}
	if !inSpan(p.Left, p.Right, span) {
		return fmt.Errorf("%w: operands %d and %d outside %s/%s", ErrInvalidProblem, p.Left, p.Right, span.Small, span.Large)
	}
	if p.Op == Minus && p.Left < p.Right {
		return fmt.Errorf("%w: %s goes negative", ErrInvalidProblem, p)
	}
	if want := p.Op.Apply(p.Left, p.Right); p.Answer != want {
		return fmt.Errorf("%w: %s = %d, got %d", ErrInvalidProblem, p, want, p.Answer)
	}
	return nil
}

func inSpan(a, b int, span Span) bool {
	if !span.Mixed() {
		return span.Small.Contains(a) && span.Small.Contains(b)
	}
	return (span.Small.Contains(a) && span.Large.Contains(b)) ||
		(span.Large.Contains(a) && span.Small.Contains(b))
}
