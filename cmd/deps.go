package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/config"
	"github.com/abhisek/certguru/internal/explain"
	"github.com/abhisek/certguru/internal/llm"
	"github.com/abhisek/certguru/internal/logging"
	"github.com/abhisek/certguru/internal/store"
	"github.com/abhisek/certguru/internal/trainer"
)

// deps is everything a command needs, built from config and flags.
type deps struct {
	cfg     *config.Config
	log     *logrus.Logger
	sqlite  *store.Store
	docs    *store.Fallback
	trainer *trainer.Trainer

	closers []func()
}

// depsOptions tunes buildDeps.
type depsOptions struct {
	// quietLog discards log output unless a log file is configured. The TUI
	// owns the terminal, so stderr logging would corrupt the screen.
	quietLog bool
}

// buildDeps loads config, opens the storage backends in fallback order and
// constructs the trainer. Callers must defer Close.
func buildDeps(cmd *cobra.Command, opts depsOptions) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	var out io.Writer = os.Stderr
	if opts.quietLog {
		out = io.Discard
	}
	log, closeLog, err := logging.New(cfg.Log, out)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	d := &deps{cfg: cfg, log: log}
	d.closers = append(d.closers, func() { _ = closeLog() })

	var backends []store.Backend
	if cfg.Store.PostgresURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Store.PostgresURL)
		if err != nil {
			// The remaining backends keep the app usable.
			log.WithError(err).Warn("postgres unavailable, falling back to local storage")
		} else {
			backends = append(backends, pg)
			d.closers = append(d.closers, pg.Close)
		}
	}

	dbPath, err := resolveDBPath(cmd, cfg.Store.SQLitePath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.sqlite = st
	d.closers = append(d.closers, func() { _ = st.Close() })
	backends = append(backends, st)

	if cfg.Store.DataDir != "" {
		dir, err := store.OpenDir(cfg.Store.DataDir)
		if err != nil {
			log.WithError(err).Warn("json data dir unavailable")
		} else {
			backends = append(backends, dir)
		}
	}

	d.docs = store.NewFallback(log, backends...)
	log.WithField("backends", d.docs.Backends()).Debug("storage ready")

	var provider llm.Provider
	explainCfg := explain.DefaultConfig()
	if llmCfg, ok := cfg.LLMProviderConfig(); ok {
		explainCfg = explainConfig(llmCfg)
		p, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), log)
		if err != nil {
			log.WithError(err).Warn("LLM provider not configured, explanations and hints use fallback text")
		} else {
			provider = p
		}
	}
	explainer := explain.New(provider, explain.NewCaseStudies(cfg.Content.CaseStudyDir), explainCfg, log)

	var rng *rand.Rand
	if seed := cfg.Training.Seed; seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	d.trainer = trainer.New(trainer.Options{
		Questions: store.NewQuestionCache(store.NewQuestionRepo(d.docs), log),
		History:   store.NewHistoryRepo(d.docs),
		Explainer: explainer,
		Rand:      rng,
		Log:       log,
	})
	if err := d.trainer.Load(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	return d, nil
}

// Close releases backends in reverse open order.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openSQLite opens only the local database, for commands that read the LLM
// event log and need no trainer.
func openSQLite(cmd *cobra.Command) (*store.Store, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// explainConfig applies the resolved per-request LLM timeout to generation.
func explainConfig(llmCfg llm.Config) explain.Config {
	c := explain.DefaultConfig()
	if llmCfg.Timeout > 0 {
		c.Timeout = llmCfg.Timeout
	}
	return c
}
