package problemgen

import "github.com/abhisek/worksheet/internal/llm"

// batch wraps an array in an object; structured output modes require an
// object at the top level.
func batch(name, description string, item map[string]any) *llm.Schema {
	return &llm.Schema{
		Name:        name,
		Description: description,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"problems": map[string]any{
					"type":  "array",
					"items": item,
				},
			},
			"required":             []any{"problems"},
			"additionalProperties": false,
		},
	}
}

// MathSchema is the response schema for arithmetic batches.
var MathSchema = batch("math-problems", "A batch of arithmetic drill problems", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"left":   map[string]any{"type": "integer", "minimum": 0, "description": "First operand"},
		"right":  map[string]any{"type": "integer", "minimum": 0, "description": "Second operand"},
		"op":     map[string]any{"type": "string", "enum": []any{"+", "-", "×"}},
		"answer": map[string]any{"type": "integer", "minimum": 0, "description": "Exact result"},
	},
	"required":             []any{"left", "right", "op", "answer"},
	"additionalProperties": false,
})

// HanjaSchema is the response schema for Chinese character batches.
var HanjaSchema = batch("hanja-problems", "A batch of Hanja study items", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"character": map[string]any{"type": "string", "description": "A single Hanja character"},
		"meaning":   map[string]any{"type": "string", "description": "Korean meaning (뜻)"},
		"reading":   map[string]any{"type": "string", "description": "Korean reading (음)"},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Exactly 4 options for multiple choice, empty otherwise",
		},
		"answer": map[string]any{"type": "string", "description": "Meaning and reading, e.g. \"메 산\""},
	},
	"required":             []any{"character", "meaning", "reading", "options", "answer"},
	"additionalProperties": false,
})

// EnglishSchema is the response schema for English batches.
var EnglishSchema = batch("english-problems", "A batch of English study items", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Exactly 4 options for multiple choice, empty for translation",
		},
		"answer": map[string]any{"type": "string", "description": "Full text of the correct answer"},
		"hint":   map[string]any{"type": "string", "description": "Optional short hint, may be empty"},
	},
	"required":             []any{"question", "options", "answer", "hint"},
	"additionalProperties": false,
})
