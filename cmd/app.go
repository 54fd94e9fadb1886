package cmd

import (
	"log/slog"

	"github.com/lepinkainen/shelfsearch/internal/affiliate"
	"github.com/lepinkainen/shelfsearch/internal/cache"
	"github.com/lepinkainen/shelfsearch/internal/config"
	"github.com/lepinkainen/shelfsearch/internal/merge"
	"github.com/lepinkainen/shelfsearch/internal/provider"
	"github.com/lepinkainen/shelfsearch/internal/ratelimit"
	"github.com/lepinkainen/shelfsearch/internal/search"
)

// providerOptions is applied to every adapter; tests use it to inject clients.
var providerOptions []provider.Option

// app holds the components shared by the commands.
type app struct {
	settings config.Settings
	store    cache.Store
	adapters []provider.Adapter
	service  *search.Service
	logger   *slog.Logger
}

func newApp(logger *slog.Logger) *app {
	if logger == nil {
		logger = slog.Default()
	}
	settings := config.Load()

	store := openStore(settings, logger)
	adapters := buildAdapters(settings, logger)

	coordinator := search.NewCoordinator(adapters,
		search.WithProviderTimeout(settings.Search.ProviderTimeout),
		search.WithMaxConcurrency(settings.Search.MaxConcurrency),
		search.WithCoordinatorLogger(logger),
	)

	opts := []search.Option{
		search.WithCache(store, settings.Cache.TTL),
		search.WithPageSize(settings.Search.PageSize),
		search.WithLogger(logger),
	}
	if len(settings.Merge.Priority) > 0 {
		opts = append(opts, search.WithMerger(merge.NewMerger(settings.Merge.Priority)))
	}
	if enricher := buildEnricher(settings.Affiliate, logger); enricher != nil {
		opts = append(opts, search.WithEnricher(enricher))
	}

	return &app{
		settings: settings,
		store:    store,
		adapters: adapters,
		service:  search.NewService(coordinator, opts...),
		logger:   logger,
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close cache", "error", err)
	}
}

func openStore(settings config.Settings, logger *slog.Logger) cache.Store {
	return cache.Open(cache.Config{
		Backend:    settings.Cache.Backend,
		SQLitePath: settings.Cache.SQLitePath,
		BadgerDir:  settings.Cache.BadgerDir,
	}, logger)
}

func buildAdapters(settings config.Settings, logger *slog.Logger) []provider.Adapter {
	cfgs := make(map[string]provider.Config, len(settings.Providers))
	for name, p := range settings.Providers {
		cfgs[name] = provider.Config{
			Enabled:       p.Enabled,
			BaseURL:       p.BaseURL,
			APIKey:        p.APIKey,
			RatePerSecond: p.RatePerSecond,
			ResultLimit:   p.ResultLimit,
			RetryAttempts: p.RetryAttempts,
		}
	}

	breaker := provider.DefaultBreakerSettings()
	if settings.Breaker.MinRequests > 0 {
		breaker.MinRequests = settings.Breaker.MinRequests
	}
	if settings.Breaker.FailureRatio > 0 {
		breaker.FailureRatio = settings.Breaker.FailureRatio
	}
	if settings.Breaker.Interval > 0 {
		breaker.Interval = settings.Breaker.Interval
	}
	if settings.Breaker.OpenTimeout > 0 {
		breaker.OpenTimeout = settings.Breaker.OpenTimeout
	}

	return provider.Build(cfgs, breaker, logger, providerOptions...)
}

func buildEnricher(s config.AffiliateSettings, logger *slog.Logger) *affiliate.Enricher {
	var linker affiliate.Linker
	switch s.Mode {
	case config.AffiliateSearch:
		if s.Tag == "" {
			logger.Debug("Affiliate tag not set, links disabled")
			return nil
		}
		linker = affiliate.NewSearchLinker(s.BaseURL, s.Tag)
	case config.AffiliateHTTP:
		if s.Endpoint == "" {
			logger.Warn("Affiliate mode is http but no endpoint is configured, links disabled")
			return nil
		}
		linker = affiliate.NewHTTPLinker(s.Endpoint,
			affiliate.WithRateLimiter(ratelimit.New("affiliate", s.RatePerSecond)))
	default:
		return nil
	}

	return affiliate.NewEnricher(linker,
		affiliate.WithTimeout(s.Timeout),
		affiliate.WithLogger(logger))
}
