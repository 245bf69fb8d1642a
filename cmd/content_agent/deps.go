package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jonathan/content-agent/internal/config"
	"github.com/jonathan/content-agent/internal/generation"
	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/profile"
	"github.com/jonathan/content-agent/internal/research"
	"github.com/jonathan/content-agent/internal/sessions"
	"github.com/jonathan/content-agent/internal/tools"
)

func profilePath(cfg *config.Config) (string, error) {
	if cfg.ProfilePath != "" {
		return cfg.ProfilePath, nil
	}
	return profile.DefaultPath()
}

func sessionsPath(cfg *config.Config) (string, error) {
	if cfg.SessionsPath != "" {
		return cfg.SessionsPath, nil
	}
	dir, err := profile.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessions.DBFile), nil
}

func loadProfile(cfg *config.Config) (*profile.UserProfile, error) {
	path, err := profilePath(cfg)
	if err != nil {
		return nil, err
	}
	return profile.Load(path)
}

func openSessionStore(cfg *config.Config) (*sessions.SQLiteStore, error) {
	path, err := sessionsPath(cfg)
	if err != nil {
		return nil, err
	}
	return sessions.OpenSQLite(path)
}

// newSearcher combines arXiv with web search when credentials are set and
// caches results in Redis, or in memory when no Redis URL is configured.
// The returned func releases the cache connection.
func newSearcher(ctx context.Context, cfg *config.Config, log *logger.Logger) (research.Searcher, func(), error) {
	backends := []research.Searcher{research.NewArxivSearcher(nil)}
	if cfg.Search.APIKey != "" && cfg.Search.CX != "" {
		web, err := research.NewWebSearcher(ctx, cfg.Search.APIKey, cfg.Search.CX, research.NewAbstractFetcher(nil))
		if err != nil {
			return nil, nil, err
		}
		backends = append(backends, web)
	}

	var searcher research.Searcher = backends[0]
	if len(backends) > 1 {
		searcher = research.NewMultiSearcher(backends...)
	}

	if cfg.RedisURL == "" {
		return research.NewCachedSearcher(searcher, research.NewMemoryCache(), cfg.Search.CacheTTL, log), func() {}, nil
	}
	cache, err := research.NewRedisCache(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	closeCache := func() {
		if err := cache.Close(); err != nil {
			log.Warn("failed to close redis cache", "error", err)
		}
	}
	return research.NewCachedSearcher(searcher, cache, cfg.Search.CacheTTL, log), closeCache, nil
}

func toolDefaults(cfg *config.Config, p *profile.UserProfile) tools.Defaults {
	d := tools.DefaultDefaults()
	if cfg.MaxPapers > 0 {
		d.MaxPapers = cfg.MaxPapers
	}
	if cfg.CitationStyle != "" {
		d.CitationStyle = cfg.CitationStyle
	}
	if p != nil {
		if p.TargetRole != "" {
			d.TargetRole = p.TargetRole
		}
		if p.Region != "" {
			d.Region = p.Region
		}
		d.Goal = p.PrimaryGoal()
	}
	return d
}

// newOracle builds the retrying Gemini oracle. The returned func closes the client.
func newOracle(ctx context.Context, cfg *config.Config, log *logger.Logger) (llm.Oracle, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GOOGLE_API_KEY or GEMINI_API_KEY environment variable is required")
	}
	llmCfg := cfg.LLMConfig()
	if err := llmCfg.Validate(); err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close model client", "error", err)
		}
	}
	return llm.NewRetryingOracle(client, llmCfg.Retry, log), closeClient, nil
}

// newGenerationService wires the oracle, tools and store into a service.
// The returned func releases the oracle and search cache.
func newGenerationService(ctx context.Context, cfg *config.Config, log *logger.Logger, store sessions.Store, p *profile.UserProfile) (*generation.Service, func(), error) {
	oracle, closeOracle, err := newOracle(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	searcher, closeSearcher, err := newSearcher(ctx, cfg, log)
	if err != nil {
		closeOracle()
		return nil, nil, err
	}
	cleanup := func() {
		closeSearcher()
		closeOracle()
	}

	svc, err := generation.NewService(generation.Config{
		Oracle:   oracle,
		Tools:    tools.NewDefaultRegistry(searcher, toolDefaults(cfg, p)),
		Sessions: store,
		Profile:  p,
		Logger:   log,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
