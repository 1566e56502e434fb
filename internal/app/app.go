// Package app assembles the HR assistant from configuration. Both the HTTP
// server and the CLI build their object graph here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/hr-assistant/internal/audit"
	"github.com/ashureev/hr-assistant/internal/command"
	"github.com/ashureev/hr-assistant/internal/config"
	"github.com/ashureev/hr-assistant/internal/conversation"
	"github.com/ashureev/hr-assistant/internal/directory"
	"github.com/ashureev/hr-assistant/internal/extractor"
	"github.com/ashureev/hr-assistant/internal/llm"
	"github.com/ashureev/hr-assistant/internal/phrasing"
	"github.com/ashureev/hr-assistant/internal/store"
)

// App is the assembled service.
type App struct {
	Config    *config.Config
	Directory *directory.Directory
	Audit     *audit.Log
	Engine    *command.Engine
	Manager   *conversation.Manager
	// Archive is nil when ARCHIVE_ENABLED is false.
	Archive *store.SQLiteStore

	closers []func() error
	logger  *slog.Logger
}

// New builds an App. Callers must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	seed, err := directory.LoadSeed(cfg.SeedDir)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	a.Directory = directory.New(seed)
	logger.Info("Directory loaded",
		"employees", len(seed.Employees), "teams", len(seed.Teams), "countries", len(seed.Countries))

	auditOpts := []audit.Option{audit.WithLogger(logger)}
	convOpts := []conversation.Option{conversation.WithLogger(logger)}

	if cfg.ArchiveEnabled {
		repo, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		if err := repo.Ping(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("archive health check: %w", err)
		}
		a.Archive = repo
		auditOpts = append(auditOpts, audit.WithArchiver(repo))
		convOpts = append(convOpts, conversation.WithArchiver(repo))
		logger.Info("Archive connected", "db_path", cfg.DBPath)
	}

	a.Audit = audit.New(auditOpts...)
	a.Engine = command.NewEngine(a.Directory, a.Audit, command.WithLogger(logger))

	var completer llm.Completer
	if cfg.Extractor.Provider == config.ExtractorOpenAI || cfg.Chat.PhrasingProvider == config.PhrasingOpenAI {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.Extractor.Timeout,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("openai client: %w", err)
		}
		completer = client
	}

	ext, err := a.buildExtractor(cfg, completer)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.Chat.PhrasingProvider == config.PhrasingOpenAI {
		convOpts = append(convOpts, conversation.WithPhraser(phrasing.NewLLM(completer, phrasing.NewTemplates(nil), logger)))
	}

	a.Manager = conversation.NewManager(ext, a.Engine, conversation.Config{
		ConfidenceThreshold: cfg.Chat.ConfidenceThreshold,
		HistoryWindow:       cfg.Chat.HistoryWindow,
		Policy:              conversation.PendingPolicy(cfg.Chat.PendingPolicy),
		DefaultUserID:       cfg.DefaultUserID,
	}, convOpts...)

	logger.Info("Assistant ready",
		"extractor", cfg.Extractor.Provider, "phrasing", cfg.Chat.PhrasingProvider, "pending_policy", cfg.Chat.PendingPolicy)
	return a, nil
}

func (a *App) buildExtractor(cfg *config.Config, completer llm.Completer) (extractor.Extractor, error) {
	var next extractor.Extractor
	switch cfg.Extractor.Provider {
	case config.ExtractorRules:
		next = extractor.NewRules()
	case config.ExtractorOpenAI:
		next = extractor.NewOpenAI(completer, cfg.Chat.HistoryWindow)
	case config.ExtractorGRPC:
		client, err := extractor.NewGRPCClient(extractor.DefaultGRPCConfig(cfg.Extractor.GRPCAddr), a.logger)
		if err != nil {
			return nil, fmt.Errorf("grpc extractor: %w", err)
		}
		a.closers = append(a.closers, func() error {
			client.Close()
			return nil
		})
		next = client
	case config.ExtractorNone:
		return extractor.Static{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor provider %q", cfg.Extractor.Provider)
	}
	return extractor.NewGuard(next, cfg.Extractor.Timeout, a.logger), nil
}

// Close releases external resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
