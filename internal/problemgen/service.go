// Package problemgen produces worksheet problems with an LLM provider and
// falls back to the local arithmetic generator for math.
package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/llm"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// ErrNoProvider is returned for subjects that cannot be generated without
// an LLM provider.
var ErrNoProvider = errors.New("no LLM provider configured")

// Purpose labels attached to LLM requests.
const (
	PurposeMath    = "math-gen"
	PurposeHanja   = "hanja-gen"
	PurposeEnglish = "english-gen"
)

// Service generates worksheets. It is safe for concurrent use.
type Service struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	arith *arith.Generator
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRand seeds local generation and option shuffling from src.
func WithRand(src rand.Source) Option {
	return func(s *Service) {
		s.rng = rand.New(src)
		s.arith = arith.NewGenerator(src)
	}
}

// New creates a Service. provider may be nil; math is then always
// generated locally.
func New(provider llm.Provider, cfg Config, opts ...Option) *Service {
	src := rand.NewPCG(rand.Uint64(), rand.Uint64())
	s := &Service{
		provider: provider,
		config:   cfg,
		logger:   slog.Default(),
		rng:      rand.New(src),
		arith:    arith.NewGenerator(src),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.Attempts < 1 {
		s.config.Attempts = 1
	}
	return s
}

// HasProvider reports whether AI generation is available.
func (s *Service) HasProvider() bool {
	return s.provider != nil
}

// GenerateMath asks the provider for a batch and falls back to local
// generation when there is no provider or the AI batch fails for any
// reason other than cancellation.
func (s *Service) GenerateMath(ctx context.Context, settings worksheet.MathSettings) (*worksheet.Worksheet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return s.LocalMath(settings)
	}

	problems, err := attempt(ctx, s, PurposeMath, mathSystemPrompt, mathUserMessage(settings), MathSchema,
		settings, s.config.MathValidators, decodeMath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.WarnContext(ctx, "ai math generation failed, using local generator",
			"error", err, "count", settings.Count, "digits", settings.Digits, "operation", settings.Operation)
		return s.LocalMath(settings)
	}
	return worksheet.NewMath(settings, problems, worksheet.SourceAI), nil
}

// LocalMath builds a math worksheet without the provider.
func (s *Service) LocalMath(settings worksheet.MathSettings) (*worksheet.Worksheet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	problems, err := s.arith.Generate(settings.Arith())
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", worksheet.ErrInvalidConfig, err)
	}
	return worksheet.NewMath(settings, problems, worksheet.SourceLocal), nil
}

// GenerateHanja builds a Chinese character worksheet. Failures are
// returned to the caller; there is no local fallback.
func (s *Service) GenerateHanja(ctx context.Context, settings worksheet.HanjaSettings) (*worksheet.Worksheet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	problems, err := attempt(ctx, s, PurposeHanja, hanjaSystemPrompt, hanjaUserMessage(settings), HanjaSchema,
		settings, s.config.HanjaValidators, decodeHanja)
	if err != nil {
		return nil, fmt.Errorf("generate hanja worksheet: %w", err)
	}
	if settings.Type == worksheet.HanjaMultipleChoice {
		for i := range problems {
			s.shuffle(problems[i].Options)
		}
	}
	return worksheet.NewHanja(settings, problems), nil
}

// GenerateEnglish builds an English worksheet. Failures are returned to
// the caller; there is no local fallback.
func (s *Service) GenerateEnglish(ctx context.Context, settings worksheet.EnglishSettings) (*worksheet.Worksheet, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	problems, err := attempt(ctx, s, PurposeEnglish, englishSystemPrompt, englishUserMessage(settings), EnglishSchema,
		settings, s.config.EnglishValidators, decodeEnglish)
	if err != nil {
		return nil, fmt.Errorf("generate english worksheet: %w", err)
	}
	if settings.Type.MultipleChoice() {
		for i := range problems {
			s.shuffle(problems[i].Options)
		}
	} else {
		for i := range problems {
			problems[i].Options = nil
		}
	}
	return worksheet.NewEnglish(settings, problems), nil
}

func (s *Service) shuffle(options []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// attempt requests a batch, trims it to the requested size, numbers it
// and runs the validator chain. Retryable validation failures request a
// fresh batch up to Config.Attempts times.
func attempt[T any, S Sizer](
	ctx context.Context,
	s *Service,
	purpose, system, user string,
	schema *llm.Schema,
	settings S,
	chain []Validator[T, S],
	decode func(json.RawMessage) ([]T, error),
) ([]T, error) {
	ctx = llm.WithPurpose(ctx, purpose)
	req := llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Schema:      schema,
		MaxTokens:   s.config.maxTokens(settings.Size()),
		Temperature: s.config.Temperature,
	}

	var lastErr error
	for range s.config.Attempts {
		resp, err := s.provider.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		batch, err := decode(resp.Content)
		if err == nil {
			if len(batch) > settings.Size() {
				batch = batch[:settings.Size()]
			}
			if err = validate(chain, batch, settings); err == nil {
				return batch, nil
			}
		}
		lastErr = err

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			break
		}
		s.logger.DebugContext(ctx, "generated batch rejected", "purpose", purpose, "error", err)
	}
	return nil, lastErr
}
