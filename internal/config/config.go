// Package config loads worksheet settings from a YAML file, WORKSHEET_*
// environment variables and .env files.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/llm"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// Config is the full application configuration.
type Config struct {
	LLM      llm.Config   `mapstructure:"llm" yaml:"llm"`
	DB       DBConfig     `mapstructure:"db" yaml:"db"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`
	Defaults Defaults     `mapstructure:"defaults" yaml:"defaults"`
	Log      LogConfig    `mapstructure:"log" yaml:"log"`
}

type DBConfig struct {
	// Path to the SQLite database. Empty selects the platform default.
	Path string `mapstructure:"path" yaml:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Defaults are the settings used when a request leaves fields unset.
type Defaults struct {
	Math    worksheet.MathSettings    `mapstructure:"math" yaml:"math" json:"math"`
	Hanja   worksheet.HanjaSettings   `mapstructure:"hanja" yaml:"hanja" json:"hanja"`
	English worksheet.EnglishSettings `mapstructure:"english" yaml:"english" json:"english"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		LLM:    llm.DefaultConfig(),
		Server: ServerConfig{Addr: ":8080"},
		Defaults: Defaults{
			Math: worksheet.MathSettings{
				Count:     20,
				Digits:    arith.TwoTwo,
				Operation: arith.Mixed,
				Format:    worksheet.Horizontal,
			},
			Hanja: worksheet.HanjaSettings{
				Count: 20,
				Grade: worksheet.Grade8,
				Type:  worksheet.HanjaMultipleChoice,
			},
			English: worksheet.EnglishSettings{
				Count: 20,
				Grade: worksheet.EnglishGrade2,
				Type:  worksheet.EnglishVocabulary,
			},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the sections that cannot be repaired at use time.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Defaults.Math.Validate(); err != nil {
		return fmt.Errorf("defaults.math: %w", err)
	}
	if err := c.Defaults.Hanja.Validate(); err != nil {
		return fmt.Errorf("defaults.hanja: %w", err)
	}
	if err := c.Defaults.English.Validate(); err != nil {
		return fmt.Errorf("defaults.english: %w", err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ResolvedLLM returns the LLM section with ${ENV_VAR} references expanded.
// When no provider is configured the vendors' standard key variables are
// probed.
func (c *Config) ResolvedLLM() llm.Config {
	out := c.LLM
	out.Gemini.APIKey = ResolveEnvVars(out.Gemini.APIKey)
	out.OpenAI.APIKey = ResolveEnvVars(out.OpenAI.APIKey)
	out.Anthropic.APIKey = ResolveEnvVars(out.Anthropic.APIKey)
	out.OpenRouter.APIKey = ResolveEnvVars(out.OpenRouter.APIKey)
	if out.Provider == "" {
		out, _ = llm.DiscoverConfig(out)
	}
	return out
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// NewLogger builds the process logger. verbose forces debug level.
func (l LogConfig) NewLogger(w io.Writer, verbose bool) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", l.Format)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
