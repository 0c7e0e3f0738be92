package arith

import (
	"errors"
	"fmt"
)

// ConfigError reports a generation request that was rejected before any
// problem was produced.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// ErrInvalidProblem is wrapped by every Check failure.
var ErrInvalidProblem = errors.New("invalid problem")
