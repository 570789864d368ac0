package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/config"
	"github.com/kailas-cloud/influencersphere/internal/db"
	"github.com/kailas-cloud/influencersphere/internal/db/memory"
	dbRedis "github.com/kailas-cloud/influencersphere/internal/db/redis"
	"github.com/kailas-cloud/influencersphere/internal/db/sqlite"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
	alertrulerepo "github.com/kailas-cloud/influencersphere/internal/repository/alertrule"
	"github.com/kailas-cloud/influencersphere/internal/repository/auditlog"
	"github.com/kailas-cloud/influencersphere/internal/repository/embcache"
	profilerepo "github.com/kailas-cloud/influencersphere/internal/repository/profile"
	"github.com/kailas-cloud/influencersphere/internal/repository/scoped"
	"github.com/kailas-cloud/influencersphere/internal/transport/inference"
	openaiEmb "github.com/kailas-cloud/influencersphere/internal/transport/openai"
	"github.com/kailas-cloud/influencersphere/internal/usecase/alerting"
	alertruleuc "github.com/kailas-cloud/influencersphere/internal/usecase/alertrule"
	healthuc "github.com/kailas-cloud/influencersphere/internal/usecase/health"
	ingestionuc "github.com/kailas-cloud/influencersphere/internal/usecase/ingestion"
	"github.com/kailas-cloud/influencersphere/internal/usecase/niche"
	"github.com/kailas-cloud/influencersphere/internal/usecase/scoring"
	searchuc "github.com/kailas-cloud/influencersphere/internal/usecase/search"
)

// app is the composition root shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store

	search    *searchuc.Service
	rules     *alertruleuc.Service
	ingestion *ingestionuc.Service
	engine    *alerting.Engine
	health    *healthuc.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	scorer, client, err := buildScorer(cfg.Scoring, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	profiler, embedder := buildNicheProfiler(cfg.Niche, store, logger)

	// Repositories over one scoped store
	scopedStore := scoped.New(store, cfg.App.AppID)
	profiles := profilerepo.New(scopedStore)
	rules := alertrulerepo.New(scopedStore, cfg.App.ServiceTenant)
	audit := auditlog.New(scopedStore)

	health := healthuc.New(store)
	// Pass only non-nil implementations; a typed nil pointer would not compare equal to nil.
	if client != nil {
		health.WithScoring(client)
	}
	if embedder != nil {
		health.WithEmbedding(embedder)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		search: searchuc.New(profiles, scorer, searchuc.Options{
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
			Workers:         cfg.Search.Workers,
		}),
		rules:     alertruleuc.New(rules),
		ingestion: ingestionuc.New(profiles, audit, profiler),
		engine: alerting.New(rules, profiles, scorer, alerting.Config{
			Interval: time.Duration(cfg.Scheduler.IntervalSec) * time.Second,
		}, logger.Named("alerting")),
		health: health,
	}, nil
}

func (a *app) Close() { a.store.Close() }

func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath)
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildScorer assembles the scorer chain: Heuristic|Inference -> Cached -> Instrumented.
// The inference client is returned separately for the breaker health check.
func buildScorer(cfg config.ScoringConfig, logger *zap.Logger) (scoring.Scorer, *inference.Client, error) {
	var (
		base   scoring.Scorer = scoring.NewHeuristic()
		client *inference.Client
	)
	if cfg.Provider == config.ScoringInference {
		ic := cfg.Inference
		var err error
		client, err = inference.NewClient(inference.Config{
			BaseURL:       ic.BaseURL,
			Model:         ic.Model,
			APIKey:        ic.APIKey,
			Timeout:       time.Duration(ic.TimeoutSec) * time.Second,
			MaxRetries:    ic.MaxRetries,
			RetryDelay:    time.Duration(ic.RetryDelayMS) * time.Millisecond,
			MaxRetryDelay: time.Duration(ic.MaxRetryDelayMS) * time.Millisecond,
			RatePerSecond: ic.RatePerSecond,
			Burst:         ic.Burst,
		}, logger.Named("inference"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create inference scorer: %w", err)
		}
		base = client
	}

	logger.Info("Scorer created",
		zap.String("provider", cfg.Provider),
		zap.Int("cache_size", cfg.CacheSize),
	)
	return scoring.NewInstrumented(scoring.NewCached(base, cfg.CacheSize), cfg.Provider, logger), client, nil
}

// buildNicheProfiler returns the configured profiler and, for the embedding profiler, its provider.
// Embedding chain: OpenAI -> store-backed cache -> instruction prefix (inside the profiler).
func buildNicheProfiler(
	cfg config.NicheConfig, store db.DocumentStore, logger *zap.Logger,
) (ingestionuc.NicheProfiler, *openaiEmb.Embedder) {
	if cfg.Provider != config.NicheEmbedding {
		return niche.NewKeyword(), nil
	}
	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Logger:     logger,
	})
	logger.Info("Embedding niche profiler created", zap.String("model", cfg.Model))
	cached := embcache.New(embedder, store, cfg.Model, metrics.EmbeddingCacheTotal, logger)
	return niche.NewEmbedding(cached, nil, logger.Named("niche")), embedder
}
