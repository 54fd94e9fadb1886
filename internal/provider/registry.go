package provider

import (
	"log/slog"

	"github.com/lepinkainen/shelfsearch/internal/ratelimit"
)

// Config configures one adapter.
type Config struct {
	Enabled       bool
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	ResultLimit   int
	RetryAttempts int
}

type registration struct {
	name    string
	factory func(opts ...Option) Adapter
}

// registrations fixes the adapter order used for fan-out and sourceStatus.
var registrations = []registration{
	{openLibraryName, func(opts ...Option) Adapter { return NewOpenLibrary(opts...) }},
	{googleBooksName, func(opts ...Option) Adapter { return NewGoogleBooks(opts...) }},
	{isbndbName, func(opts ...Option) Adapter { return NewISBNdb(opts...) }},
}

// Names lists every known adapter in registration order.
func Names() []string {
	names := make([]string, 0, len(registrations))
	for _, r := range registrations {
		names = append(names, r.name)
	}
	return names
}

// Build creates the enabled adapters in registration order, each wrapped in
// a circuit breaker. Adapters missing from cfgs are built with defaults.
// extra options are applied to every adapter after its own config.
func Build(cfgs map[string]Config, breaker BreakerSettings, logger *slog.Logger, extra ...Option) []Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	adapters := make([]Adapter, 0, len(registrations))
	for _, r := range registrations {
		cfg, ok := cfgs[r.name]
		if !ok {
			cfg = Config{Enabled: true}
		}
		if !cfg.Enabled {
			logger.Debug("Provider disabled", "provider", r.name)
			continue
		}

		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAPIKey(cfg.APIKey),
			WithResultLimit(cfg.ResultLimit),
			WithRetryAttempts(cfg.RetryAttempts),
		}
		if cfg.RatePerSecond > 0 {
			opts = append(opts, WithRateLimiter(ratelimit.New(r.name, cfg.RatePerSecond)))
		}
		opts = append(opts, extra...)

		adapters = append(adapters, WithBreaker(r.factory(opts...), breaker, logger))
	}
	return adapters
}
