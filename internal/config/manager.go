package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. WORKSHEET_LLM_PROVIDER.
const EnvPrefix = "WORKSHEET"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v      *viper.Viper
	logger *slog.Logger

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager loads .env files, then the config file (cfgFile, or the
// first of ./worksheet.yaml and $HOME/.worksheet/config.yaml) and the
// environment on top of the built-in defaults. A missing config file is
// not an error.
func NewManager(cfgFile string) (*Manager, error) {
	// Variables already set in the environment win over .env entries.
	_ = godotenv.Load()

	cm := &Manager{v: viper.New(), logger: slog.Default()}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	if err := setDefaults(cm.v, DefaultConfig()); err != nil {
		return err
	}

	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("worksheet")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			cm.v.AddConfigPath(filepath.Join(home, ".worksheet"))
		}
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// setDefaults registers every leaf of cfg as a dotted viper default so
// that AutomaticEnv can override nested keys.
func setDefaults(v *viper.Viper, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse defaults: %w", err)
	}
	walk("", tree, v.SetDefault)
	// Keys omitted from the defaults still need registering for env lookup.
	for _, k := range []string{"llm.gemini.api_key", "llm.openai.api_key", "llm.anthropic.api_key", "llm.openrouter.api_key", "llm.openai.base_url", "llm.anthropic.base_url", "llm.openrouter.base_url"} {
		if !v.IsSet(k) {
			v.SetDefault(k, "")
		}
	}
	return nil
}

func walk(prefix string, node map[string]any, set func(string, any)) {
	for k, val := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := val.(map[string]any); ok {
			walk(key, child, set)
			continue
		}
		set(key, val)
	}
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ConfigFile returns the file the configuration was read from, or "".
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// SetLogger sets the logger used to report rejected reloads.
func (cm *Manager) SetLogger(logger *slog.Logger) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.logger = logger
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of the config file. Reloads that fail
// to parse or validate keep the previous configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(fsnotify.Event) {
		cm.reload()
	})
	cm.v.WatchConfig()
}

func (cm *Manager) reload() {
	cfg, err := cm.load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		cm.mu.RLock()
		logger := cm.logger
		cm.mu.RUnlock()
		logger.Warn("config reload rejected, keeping previous configuration",
			"file", cm.v.ConfigFileUsed(), "error", err)
		return
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// WriteDefault writes the default configuration to path. Existing files
// are left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Worksheet configuration
# API keys may use ${ENV_VAR} syntax to reference environment variables.
# Leave llm.provider empty to pick the first of GEMINI_API_KEY,
# OPENAI_API_KEY, ANTHROPIC_API_KEY and OPENROUTER_API_KEY that is set.

`)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}

// Marshal renders cfg as YAML with API keys masked.
func Marshal(cfg *Config) ([]byte, error) {
	masked := *cfg
	masked.LLM.Gemini.APIKey = mask(masked.LLM.Gemini.APIKey)
	masked.LLM.OpenAI.APIKey = mask(masked.LLM.OpenAI.APIKey)
	masked.LLM.Anthropic.APIKey = mask(masked.LLM.Anthropic.APIKey)
	masked.LLM.OpenRouter.APIKey = mask(masked.LLM.OpenRouter.APIKey)
	return yaml.Marshal(masked)
}

func mask(key string) string {
	if key == "" || strings.HasPrefix(key, "${") {
		return key
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
