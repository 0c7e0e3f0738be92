package arith

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
)

func seeded(seed uint64) *Generator {
	return NewGenerator(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestGenerate_AdditionTwoDigit(t *testing.T) {
	problems, err := seeded(1).Generate(Config{Count: 5, Digits: TwoTwo, Operation: Addition})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(problems) != 5 {
		t.Fatalf("expected 5 problems, got %d", len(problems))
	}
	for _, p := range problems {
		if p.Op != Plus {
			t.Errorf("problem %d: expected +, got %q", p.ID, p.Op)
		}
		if !TwoDigit.Contains(p.Left) || !TwoDigit.Contains(p.Right) {
			t.Errorf("problem %d: operands %d, %d outside [10, 99]", p.ID, p.Left, p.Right)
		}
		if p.Answer != p.Left+p.Right {
			t.Errorf("problem %d: answer %d, want %d", p.ID, p.Answer, p.Left+p.Right)
		}
	}
}

func TestGenerate_SubtractionNeverNegative(t *testing.T) {
	for seed := range uint64(50) {
		problems, err := seeded(seed).Generate(Config{Count: 10, Digits: TwoTwo, Operation: Subtraction})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range problems {
			if p.Op != Minus {
				t.Fatalf("expected -, got %q", p.Op)
			}
			if p.Left < p.Right {
				t.Fatalf("seed %d problem %d: %d < %d", seed, p.ID, p.Left, p.Right)
			}
			if p.Answer != p.Left-p.Right || p.Answer < 0 {
				t.Fatalf("seed %d problem %d: bad answer %d", seed, p.ID, p.Answer)
			}
		}
	}
}

func TestGenerate_MixedOperationSplit(t *testing.T) {
	problems, err := seeded(7).Generate(Config{Count: 100, Digits: TwoTwo, Operation: Mixed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var plus int
	for _, p := range problems {
		switch p.Op {
		case Plus:
			plus++
		case Minus:
		default:
			t.Fatalf("unexpected operator %q in mixed batch", p.Op)
		}
	}
	if plus < 30 || plus > 70 {
		t.Errorf("expected 30-70 additions out of 100, got %d", plus)
	}
}

func TestGenerate_OperandRanges(t *testing.T) {
	for _, mode := range DigitModes() {
		t.Run(string(mode), func(t *testing.T) {
			span, _ := mode.Span()
			problems, err := seeded(3).Generate(Config{Count: 200, Digits: mode, Operation: Mixed})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, p := range problems {
				if !span.Mixed() {
					if !span.Small.Contains(p.Left) || !span.Small.Contains(p.Right) {
						t.Fatalf("problem %d: %d, %d outside %s", p.ID, p.Left, p.Right, span.Small)
					}
					continue
				}
				smallCount := 0
				largeCount := 0
				for _, n := range []int{p.Left, p.Right} {
					if span.Small.Contains(n) {
						smallCount++
					}
					if span.Large.Contains(n) {
						largeCount++
					}
				}
				if smallCount != 1 || largeCount != 1 {
					t.Fatalf("problem %d: %d, %d want one operand in %s and one in %s",
						p.ID, p.Left, p.Right, span.Small, span.Large)
				}
			}
		})
	}
}

func TestGenerate_MixedRangeBothPositions(t *testing.T) {
	problems, err := seeded(11).Generate(Config{Count: 100, Digits: TwoThree, Operation: Addition})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var largeLeft int
	for _, p := range problems {
		if ThreeDigit.Contains(p.Left) {
			largeLeft++
		}
	}
	if largeLeft == 0 || largeLeft == len(problems) {
		t.Errorf("larger operand always on one side (%d/%d on the left)", largeLeft, len(problems))
	}
}

func TestGenerate_Multiplication(t *testing.T) {
	problems, err := seeded(5).Generate(Config{Count: 20, Digits: OneOne, Operation: Multiplication})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range problems {
		if p.Op != Times || p.Answer != p.Left*p.Right {
			t.Errorf("problem %d: %s = %d", p.ID, p, p.Answer)
		}
	}
}

func TestGenerate_IDsSequential(t *testing.T) {
	for _, count := range []int{1, 7, 60} {
		problems, err := Generate(Config{Count: count, Digits: ThreeThree, Operation: Mixed})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(problems) != count {
			t.Fatalf("expected %d problems, got %d", count, len(problems))
		}
		for i, p := range problems {
			if p.ID != i+1 {
				t.Fatalf("position %d has ID %d", i, p.ID)
			}
		}
	}
}

func TestGenerate_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero count", Config{Count: 0, Digits: TwoTwo, Operation: Addition}, "count"},
		{"negative count", Config{Count: -3, Digits: TwoTwo, Operation: Addition}, "count"},
		{"unknown digits", Config{Count: 5, Digits: "4x4", Operation: Addition}, "digits"},
		{"empty digits", Config{Count: 5, Operation: Addition}, "digits"},
		{"unknown operation", Config{Count: 5, Digits: TwoTwo, Operation: "division"}, "operation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems, err := Generate(tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if problems != nil {
				t.Errorf("expected no partial output, got %d problems", len(problems))
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestGenerate_SameSeedSameBatch(t *testing.T) {
	cfg := Config{Count: 12, Digits: TwoThree, Operation: Mixed}
	a, _ := seeded(42).Generate(cfg)
	b, _ := seeded(42).Generate(cfg)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   Problem
		want Problem
	}{
		{Problem{ID: 1, Left: 12, Right: 45, Op: Minus}, Problem{ID: 1, Left: 45, Right: 12, Op: Minus, Answer: 33}},
		{Problem{ID: 2, Left: 45, Right: 12, Op: Minus}, Problem{ID: 2, Left: 45, Right: 12, Op: Minus, Answer: 33}},
		{Problem{ID: 3, Left: 30, Right: 30, Op: Minus}, Problem{ID: 3, Left: 30, Right: 30, Op: Minus, Answer: 0}},
		{Problem{ID: 4, Left: 12, Right: 45, Op: Plus}, Problem{ID: 4, Left: 12, Right: 45, Op: Plus, Answer: 57}},
		{Problem{ID: 5, Left: 3, Right: 7, Op: Times}, Problem{ID: 5, Left: 3, Right: 7, Op: Times, Answer: 21}},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	cfg := Config{Count: 1, Digits: TwoTwo, Operation: Mixed}
	tests := []struct {
		name string
		p    Problem
		ok   bool
	}{
		{"valid addition", Problem{Left: 23, Right: 45, Op: Plus, Answer: 68}, true},
		{"valid subtraction", Problem{Left: 45, Right: 23, Op: Minus, Answer: 22}, true},
		{"wrong answer", Problem{Left: 23, Right: 45, Op: Plus, Answer: 67}, false},
		{"negative subtraction", Problem{Left: 23, Right: 45, Op: Minus, Answer: -22}, false},
		{"out of range", Problem{Left: 123, Right: 45, Op: Plus, Answer: 168}, false},
		{"operator not allowed", Problem{Left: 12, Right: 11, Op: Times, Answer: 132}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.p, cfg)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidProblem) {
					t.Errorf("expected ErrInvalidProblem, got %v", err)
				}
			}
		})
	}
}

func TestCheck_MixedRange(t *testing.T) {
	cfg := Config{Count: 1, Digits: TwoThree, Operation: Addition}
	if err := Check(Problem{Left: 345, Right: 27, Op: Plus, Answer: 372}, cfg); err != nil {
		t.Errorf("large-left: unexpected error: %v", err)
	}
	if err := Check(Problem{Left: 27, Right: 345, Op: Plus, Answer: 372}, cfg); err != nil {
		t.Errorf("large-right: unexpected error: %v", err)
	}
	if err := Check(Problem{Left: 27, Right: 35, Op: Plus, Answer: 62}, cfg); err == nil {
		t.Error("expected error when both operands are two-digit")
	}
}

func TestParse(t *testing.T) {
	if m, err := ParseDigitMode(" 2X3 "); err != nil || m != TwoThree {
		t.Errorf("ParseDigitMode = %q, %v", m, err)
	}
	if _, err := ParseDigitMode("5x5"); err == nil {
		t.Error("expected error for 5x5")
	}
	if o, err := ParseOperation("Mixed"); err != nil || o != Mixed {
		t.Errorf("ParseOperation = %q, %v", o, err)
	}
	if _, err := ParseOperation("division"); err == nil {
		t.Error("expected error for division")
	}
	if op, err := ParseOperator("*"); err != nil || op != Times {
		t.Errorf("ParseOperator = %q, %v", op, err)
	}
}

func TestUnmarshalText(t *testing.T) {
	var cfg struct {
		Digits    DigitMode `json:"digits"`
		Operation Operation `json:"operation"`
	}
	if err := json.Unmarshal([]byte(`{"digits":" 2X3","operation":"MIXED"}`), &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Digits != TwoThree || cfg.Operation != Mixed {
		t.Errorf("got %q %q", cfg.Digits, cfg.Operation)
	}

	err := json.Unmarshal([]byte(`{"digits":"4x4"}`), &cfg)
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "digits" {
		t.Errorf("expected digits ConfigError, got %v", err)
	}
}
