package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/llm"
	"github.com/abhisek/worksheet/internal/worksheet"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worksheet.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func clearProviderEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Defaults.Math.Count != 20 || cfg.Defaults.Math.Operation != arith.Mixed {
		t.Errorf("unexpected math defaults: %+v", cfg.Defaults.Math)
	}
	if cfg.LLM.Gemini.Model != llm.DefaultGeminiModel {
		t.Errorf("gemini model = %q", cfg.LLM.Gemini.Model)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret123")

	if got := ResolveEnvVars("${TEST_API_KEY}"); got != "secret123" {
		t.Errorf("expected secret123, got %s", got)
	}
	if got := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}"); got != "" {
		t.Errorf("expected empty string, got %s", got)
	}
	if got := ResolveEnvVars("literal-value"); got != "literal-value" {
		t.Errorf("expected literal-value, got %s", got)
	}
}

func TestNewManager_File(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: mock
  timeout: 15s
server:
  addr: 127.0.0.1:9000
defaults:
  math:
    count: 30
    digits: 2x3
    operation: addition
    format: vertical
`)
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	cfg := mgr.Get()

	if cfg.LLM.Provider != llm.ProviderMock {
		t.Errorf("provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("timeout = %s", cfg.LLM.Timeout)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	want := worksheet.MathSettings{Count: 30, Digits: arith.TwoThree, Operation: arith.Addition, Format: worksheet.Vertical}
	if cfg.Defaults.Math != want {
		t.Errorf("math defaults = %+v, want %+v", cfg.Defaults.Math, want)
	}
	// Untouched sections keep their defaults.
	if cfg.Defaults.Hanja.Grade != worksheet.Grade8 {
		t.Errorf("hanja grade = %q", cfg.Defaults.Hanja.Grade)
	}
	if cfg.LLM.Retry.MaxAttempts != 3 {
		t.Errorf("retry attempts = %d", cfg.LLM.Retry.MaxAttempts)
	}
	if mgr.ConfigFile() != path {
		t.Errorf("config file = %q", mgr.ConfigFile())
	}
}

func TestNewManager_EnvOverrides(t *testing.T) {
	t.Setenv("WORKSHEET_LLM_PROVIDER", "openai")
	t.Setenv("WORKSHEET_LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("WORKSHEET_DEFAULTS_ENGLISH_COUNT", "12")

	mgr, err := NewManager(writeConfig(t, "log:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	cfg := mgr.Get()
	if cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.APIKey != "sk-test" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Defaults.English.Count != 12 {
		t.Errorf("english count = %d", cfg.Defaults.English.Count)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestNewManager_BadFile(t *testing.T) {
	if _, err := NewManager(writeConfig(t, "llm: [unterminated")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestResolvedLLM(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("MY_GEMINI", "g-key")

	cfg := DefaultConfig()
	cfg.LLM.Provider = llm.ProviderGemini
	cfg.LLM.Gemini.APIKey = "${MY_GEMINI}"
	if got := cfg.ResolvedLLM(); got.Gemini.APIKey != "g-key" {
		t.Errorf("api key = %q", got.Gemini.APIKey)
	}

	t.Run("discovers provider", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "a-key")
		cfg := DefaultConfig()
		got := cfg.ResolvedLLM()
		if got.Provider != llm.ProviderAnthropic || got.Anthropic.APIKey != "a-key" {
			t.Errorf("discovered = %q / %q", got.Provider, got.Anthropic.APIKey)
		}
	})

	t.Run("none is respected", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g")
		cfg := DefaultConfig()
		cfg.LLM.Provider = llm.ProviderNone
		if got := cfg.ResolvedLLM(); got.Enabled() {
			t.Error("expected provider none to stay disabled")
		}
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Defaults.Hanja.Count = 99
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "defaults.hanja") {
		t.Errorf("expected hanja defaults error, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected log level error")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	logger, _ = LogConfig{Level: "warn"}.NewLogger(&buf, true)
	logger.Debug("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Errorf("verbose should enable debug, got %q", buf.String())
	}

	if _, err := (LogConfig{Format: "xml"}).NewLogger(&buf, false); err == nil {
		t.Error("expected unknown format error")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "worksheet.yaml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Error("expected error when file exists")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("force overwrite: %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("reading written default: %v", err)
	}
	cfg := mgr.Get()
	if cfg.Defaults != DefaultConfig().Defaults {
		t.Errorf("defaults round trip = %+v", cfg.Defaults)
	}
	if cfg.LLM.Timeout != DefaultConfig().LLM.Timeout {
		t.Errorf("timeout round trip = %s", cfg.LLM.Timeout)
	}
}

func TestMarshal_MasksKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.OpenAI.APIKey = "sk-1234567890abcdef"
	cfg.LLM.Gemini.APIKey = "${GEMINI_API_KEY}"
	out, err := Marshal(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Contains(s, "1234567890") {
		t.Errorf("key leaked: %s", s)
	}
	if !strings.Contains(s, "sk-1****cdef") || !strings.Contains(s, "${GEMINI_API_KEY}") {
		t.Errorf("unexpected masking: %s", s)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-1234567890abcdef" {
		t.Error("Marshal modified its argument")
	}
}

func TestManager_Reload(t *testing.T) {
	path := writeConfig(t, "defaults:\n  math:\n    count: 10\n")
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	mgr.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	var calls atomic.Int32
	var last atomic.Int64
	mgr.OnChange(func(cfg *Config) {
		calls.Add(1)
		last.Store(int64(cfg.Defaults.Math.Count))
	})

	if err := os.WriteFile(path, []byte("defaults:\n  math:\n    count: 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mgr.v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	mgr.reload()
	if calls.Load() != 1 || last.Load() != 40 || mgr.Get().Defaults.Math.Count != 40 {
		t.Errorf("reload: calls=%d last=%d", calls.Load(), last.Load())
	}

	// An invalid file keeps the previous config.
	if err := os.WriteFile(path, []byte("defaults:\n  math:\n    count: 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mgr.v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	mgr.reload()
	if calls.Load() != 1 || mgr.Get().Defaults.Math.Count != 40 {
		t.Errorf("invalid reload applied: calls=%d count=%d", calls.Load(), mgr.Get().Defaults.Math.Count)
	}
	if !strings.Contains(logs.String(), "config reload rejected") || !strings.Contains(logs.String(), "exceeds") {
		t.Errorf("rejected reload not logged: %q", logs.String())
	}
}

func TestManager_WatchConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: :1\n")
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	var addr atomic.Value
	mgr.OnChange(func(cfg *Config) { addr.Store(cfg.Server.Addr) })
	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("server:\n  addr: :2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, _ := addr.Load().(string); v == ":2" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("config change not observed, got %v", addr.Load())
}
