package main

import (
	"context"
	"fmt"

	"github.com/jonathan/career-pilot/internal/activity"
	"github.com/jonathan/career-pilot/internal/agent"
	"github.com/jonathan/career-pilot/internal/config"
	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/logging"
	"github.com/jonathan/career-pilot/internal/pipeline"
	"github.com/jonathan/career-pilot/internal/tracker"
)

// app holds the wired dependencies shared by the subcommands
type app struct {
	cfg        config.Config
	logger     *logging.Logger
	llm        llm.Client
	agent      *agent.CareerAgent
	controller *pipeline.Controller
}

// loadConfig resolves the configuration and applies the --log-level override
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newApp builds the LLM client, agent, tracker and controller from cfg
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s environment variable or api_key config is required", config.EnvAPIKey)
	}

	logger := logging.New(cfg.LogLevel)

	llmConfig, err := cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	careerAgent, err := agent.New(client, agent.WithDefaultLocation(cfg.DefaultLocation))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	controller := pipeline.NewController(careerAgent,
		pipeline.WithLogger(logger),
		pipeline.WithActivityLog(activity.New(activity.WithLogger(logger.With("component", "activity")))),
		pipeline.WithTracker(store),
		pipeline.WithDefaultLocation(cfg.DefaultLocation),
	)
	if err := controller.LoadTracked(ctx); err != nil {
		_ = controller.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to load tracked jobs: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		llm:        client,
		agent:      careerAgent,
		controller: controller,
	}, nil
}

// Close releases the tracker repository and the LLM client
func (a *app) Close() {
	if err := a.controller.Close(); err != nil {
		a.logger.Warn("closing tracker", "error", err)
	}
	if err := a.llm.Close(); err != nil {
		a.logger.Warn("closing LLM client", "error", err)
	}
	_ = a.logger.Sync()
}

// openRepository opens the persistence backend named by cfg.Tracker; memory has none
func openRepository(ctx context.Context, cfg config.Config) (tracker.Repository, error) {
	switch cfg.Tracker {
	case "", config.TrackerMemory:
		return nil, nil
	case config.TrackerPostgres:
		repo, err := tracker.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect tracker database: %w", err)
		}
		return repo, nil
	case config.TrackerSQLite:
		repo, err := tracker.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open tracker database: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown tracker backend %q", cfg.Tracker)
	}
}

// openStore wraps the configured repository in a tracking store
func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (*tracker.Store, error) {
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		logger.Info("tracker is in-memory; tracked jobs are lost on exit")
		return tracker.NewStore(), nil
	}
	logger.Info("tracker persistence enabled", "backend", cfg.Tracker)
	return tracker.NewStore(tracker.WithRepository(repo)), nil
}
