package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func hanjaItemSchema() *Schema {
	return &Schema{
		Name:        "test-hanja-item",
		Description: "One Hanja exercise",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"character": map[string]any{"type": "string"},
				"stroke":    map[string]any{"type": "integer", "minimum": 1},
				"grade":     map[string]any{"type": "string", "enum": []any{"6", "7", "8"}},
			},
			"required": []any{"character", "stroke"},
		},
	}
}

func TestValidateResponse_ValidJSON(t *testing.T) {
	raw := json.RawMessage(`{"character":"山","stroke":3,"grade":"8"}`)
	if err := validateResponse(hanjaItemSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"character":"水","stroke":4}`)
	if err := validateResponse(hanjaItemSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"character":"火"}`},
		{"wrong type", `{"character":"火","stroke":"four"}`},
		{"below minimum", `{"character":"火","stroke":0}`},
		{"invalid enum", `{"character":"火","stroke":4,"grade":"5"}`},
		{"malformed", `{"character":`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(hanjaItemSchema(), json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	if err := validateResponse(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_ProblemBatch(t *testing.T) {
	schema := &Schema{
		Name:        "test-batch",
		Description: "A batch of arithmetic problems",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"problems": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"left":   map[string]any{"type": "integer"},
							"right":  map[string]any{"type": "integer"},
							"op":     map[string]any{"type": "string", "enum": []any{"+", "-"}},
							"answer": map[string]any{"type": "integer"},
						},
						"required": []any{"left", "right", "op", "answer"},
					},
				},
			},
			"required": []any{"problems"},
		},
	}

	valid := json.RawMessage(`{"problems":[{"left":12,"right":34,"op":"+","answer":46}]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"problems":[{"left":12,"right":34,"op":"/","answer":0}]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for operator outside enum")
	}
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	loose := &Schema{Name: "shared", Definition: map[string]any{"type": "object"}}
	strict := &Schema{Name: "shared", Definition: map[string]any{
		"type":     "object",
		"required": []any{"problems"},
	}}

	raw := json.RawMessage(`{}`)
	if err := validateResponse(loose, raw); err != nil {
		t.Fatalf("loose schema: unexpected error: %v", err)
	}
	if err := validateResponse(strict, raw); err == nil {
		t.Fatal("strict schema: expected error, got the loose schema from cache")
	}
}
