package problemgen

import (
	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// Config controls the behavior of the Service.
type Config struct {
	// Validator chains per subject. They execute in order; the first
	// failure stops the chain.
	MathValidators    []Validator[arith.Problem, worksheet.MathSettings]
	HanjaValidators   []Validator[worksheet.HanjaProblem, worksheet.HanjaSettings]
	EnglishValidators []Validator[worksheet.EnglishProblem, worksheet.EnglishSettings]

	// Attempts is how many times a batch is requested when validation
	// fails with a retryable error. Provider errors are retried by the
	// provider middleware, not here.
	Attempts int

	// The token budget is BaseTokens plus TokensPerProblem for every
	// requested problem.
	BaseTokens       int
	TokensPerProblem int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chains and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		MathValidators: []Validator[arith.Problem, worksheet.MathSettings]{
			CountValidator[arith.Problem, worksheet.MathSettings]{},
			MathCheckValidator{},
		},
		HanjaValidators: []Validator[worksheet.HanjaProblem, worksheet.HanjaSettings]{
			CountValidator[worksheet.HanjaProblem, worksheet.HanjaSettings]{},
			HanjaStructuralValidator{},
			HanjaChoiceValidator{},
		},
		EnglishValidators: []Validator[worksheet.EnglishProblem, worksheet.EnglishSettings]{
			CountValidator[worksheet.EnglishProblem, worksheet.EnglishSettings]{},
			EnglishStructuralValidator{},
			EnglishChoiceValidator{},
		},
		Attempts:         2,
		BaseTokens:       512,
		TokensPerProblem: 96,
		Temperature:      0.8,
	}
}

func (c Config) maxTokens(count int) int {
	return c.BaseTokens + c.TokensPerProblem*count
}
