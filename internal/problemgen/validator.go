package problemgen

import "fmt"

// Sizer is implemented by every settings type. Size is the number of
// problems requested.
type Sizer interface {
	Size() int
}

// Validator checks a generated batch for correctness.
// Implementations should be stateless and safe for concurrent use.
type Validator[T any, S Sizer] interface {
	// Name returns a short identifier for this validator (for error messages
	// and logging), e.g. "count", "math-check", "choices".
	Name() string

	// Validate checks the batch against the settings it was requested with.
	// Returns a ValidationError if any item fails.
	Validate(batch []T, settings S) *ValidationError
}

// ValidationError describes why a generated batch failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Item      int    // 1-based problem number, 0 for batch-level failures
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	if e.Item > 0 {
		return fmt.Sprintf("validator %q: problem %d: %s", e.Validator, e.Item, e.Message)
	}
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// validate runs the chain in order; the first failure stops it.
func validate[T any, S Sizer](chain []Validator[T, S], batch []T, settings S) error {
	for _, v := range chain {
		if verr := v.Validate(batch, settings); verr != nil {
			return verr
		}
	}
	return nil
}

// CountValidator checks that the batch holds exactly the requested number
// of problems. Extra problems are trimmed before validation, so only a
// short batch fails.
type CountValidator[T any, S Sizer] struct{}

func (v CountValidator[T, S]) Name() string { return "count" }

func (v CountValidator[T, S]) Validate(batch []T, settings S) *ValidationError {
	if len(batch) != settings.Size() {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d problems, got %d", settings.Size(), len(batch)),
			Retryable: true,
		}
	}
	return nil
}
