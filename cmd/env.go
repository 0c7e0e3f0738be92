package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/worksheet/internal/config"
	"github.com/abhisek/worksheet/internal/llm"
	"github.com/abhisek/worksheet/internal/problemgen"
	"github.com/abhisek/worksheet/internal/store"
)

// env is the configuration and logger shared by a command invocation.
type env struct {
	mgr    *config.Manager
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnv reads the config file and environment and builds the logger.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := cfg.Log
	if f, _ := cmd.Flags().GetString("log-format"); f != "" {
		logCfg.Format = f
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := logCfg.NewLogger(os.Stderr, verbose)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	mgr.SetLogger(logger)

	return &env{mgr: mgr, cfg: cfg, logger: logger}, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from the config, then WORKSHEET_DB and the default XDG path.
func (e *env) resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := e.cfg.DB.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func (e *env) openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := e.resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newService builds the generation service. A missing or broken provider
// configuration leaves the service without a provider; math still works.
func (e *env) newService(ctx context.Context, events llm.EventRecorder) *problemgen.Service {
	cfg := e.cfg.ResolvedLLM()
	provider, err := llm.NewProvider(ctx, cfg, events, e.logger)
	if err != nil {
		e.logger.Warn("LLM provider not configured, AI features unavailable", "error", err)
		provider = nil
	} else if provider == nil {
		e.logger.Debug("no LLM provider configured, math worksheets are generated locally")
	} else {
		e.logger.Debug("using LLM provider", "provider", cfg.Provider, "model", provider.ModelID())
	}
	return problemgen.New(provider, problemgen.DefaultConfig(), problemgen.WithLogger(e.logger))
}

// withStore loads the environment, opens the store for the duration of fn
// and closes it afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	st, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cmd.Context(), st)
}
