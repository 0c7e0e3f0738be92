package problemgen

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/worksheet"
)

type envelope[T any] struct {
	Problems []T `json:"problems"`
}

func decodeEnvelope[T any](raw json.RawMessage) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return env.Problems, nil
}

// mathOutput is one raw arithmetic item before validation.
type mathOutput struct {
	Left   int    `json:"left"`
	Right  int    `json:"right"`
	Op     string `json:"op"`
	Answer int    `json:"answer"`
}

func decodeMath(raw json.RawMessage) ([]arith.Problem, error) {
	items, err := decodeEnvelope[mathOutput](raw)
	if err != nil {
		return nil, err
	}
	problems := make([]arith.Problem, len(items))
	for i, it := range items {
		op, err := arith.ParseOperator(it.Op)
		if err != nil {
			return nil, &ValidationError{Validator: "structural", Item: i + 1, Message: err.Error(), Retryable: true}
		}
		problems[i] = arith.Problem{ID: i + 1, Left: it.Left, Right: it.Right, Op: op, Answer: it.Answer}
	}
	return problems, nil
}

func decodeHanja(raw json.RawMessage) ([]worksheet.HanjaProblem, error) {
	problems, err := decodeEnvelope[worksheet.HanjaProblem](raw)
	if err != nil {
		return nil, err
	}
	for i := range problems {
		problems[i].ID = i + 1
	}
	return problems, nil
}

func decodeEnglish(raw json.RawMessage) ([]worksheet.EnglishProblem, error) {
	problems, err := decodeEnvelope[worksheet.EnglishProblem](raw)
	if err != nil {
		return nil, err
	}
	for i := range problems {
		problems[i].ID = i + 1
	}
	return problems, nil
}
