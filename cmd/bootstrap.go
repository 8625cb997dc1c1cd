package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/assistant"
	"github.com/abhisek/roadmapper/internal/config"
	"github.com/abhisek/roadmapper/internal/dashboard"
	"github.com/abhisek/roadmapper/internal/llm"
	"github.com/abhisek/roadmapper/internal/logging"
	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/review"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/store"
	"github.com/abhisek/roadmapper/internal/syncstatus"
)

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	override := func(flag string, dst *string) {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	override("roadmap", &cfg.Roadmap.Path)
	override("backend", &cfg.Storage.Backend)
	override("data-dir", &cfg.Storage.Dir)
	override("log-level", &cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRoadmap(cfg *config.Config) (*roadmap.Graph, error) {
	if cfg.Roadmap.Path == "" {
		return roadmap.LoadDefault()
	}
	return roadmap.Load(cfg.Roadmap.Path)
}

// env is everything a command needs to read or change progress. Build it
// with openEnv and release it with Close.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	kv       store.KV
	graph    *roadmap.Graph
	progress *progress.Store
	reviews  *review.Scheduler
	shell    *dashboard.Shell

	closers []func()
}

type envOptions struct {
	// tui routes logs to the configured file only.
	tui bool
}

func openEnv(cmd *cobra.Command, opts envOptions) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if opts.tui {
		logger, err = logging.ForTUI(cfg.Logging)
	} else {
		logger, err = logging.New(cfg.Logging)
	}
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, func() { _ = logger.Sync() })

	e.graph, err = loadRoadmap(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	if r := e.graph.Integrity(); !r.OK() {
		logger.Warn("roadmap has integrity problems", zap.Int("problems", len(r.Problems)))
	}

	e.kv, err = store.Open(cfg.Storage)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.closers = append(e.closers, func() {
		if err := e.kv.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e.progress, err = progress.Open(ctx, e.kv,
		progress.WithKey(cfg.Storage.ProgressKey),
		progress.WithLogger(logger.Named("progress")))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open progress: %w", err)
	}
	e.closers = append(e.closers, func() { _ = e.progress.Close() })

	e.reviews = review.Open(ctx, e.kv, review.WithLogger(logger.Named("review")))
	e.closers = append(e.closers, e.reviews.Track(ctx, e.progress))

	e.shell = dashboard.New(e.graph, e.progress,
		dashboard.WithReviews(e.reviews),
		dashboard.WithLogger(logger.Named("dashboard")))
	e.closers = append(e.closers, e.shell.Close)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// assistant builds the assistant service, or returns nil with a warning
// when the provider cannot be configured (for example a missing API key).
func (e *env) assistant() *assistant.Service {
	lc := llm.FromSettings(e.cfg.LLM)
	provider, err := llm.NewProvider(context.Background(), lc, store.EventsOf(e.kv), e.logger.Named("llm"))
	if err != nil {
		e.logger.Warn("assistant unavailable", zap.String("provider", lc.Provider), zap.Error(err))
		return nil
	}
	ac := assistant.DefaultConfig()
	if e.cfg.LLM.Timeout > 0 {
		ac.Timeout = e.cfg.LLM.Timeout
	}
	return assistant.NewService(provider, ac, e.logger.Named("assistant"))
}

func (e *env) sync() *syncstatus.Client {
	return syncstatus.New(e.cfg.Sync, e.logger.Named("sync"))
}
