package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/shelfsearch/internal/config"
	"github.com/lepinkainen/shelfsearch/internal/provider"
)

const pingTimeout = 10 * time.Second

// ProvidersCmd represents the providers command and its subcommands
type ProvidersCmd struct {
	List ProvidersListCmd `cmd:"" help:"List known providers and whether they are enabled"`
	Ping ProvidersPingCmd `cmd:"" help:"Check that every enabled provider is reachable"`
}

// ProvidersListCmd represents the providers list subcommand
type ProvidersListCmd struct{}

// ProvidersPingCmd represents the providers ping subcommand
type ProvidersPingCmd struct{}

func (p *ProvidersListCmd) Run() error {
	settings := config.Load()

	for _, name := range provider.Names() {
		cfg := settings.Providers[name]
		state := "disabled"
		if cfg.Enabled {
			state = "enabled"
		}
		_, _ = fmt.Fprintf(stdout, "%-12s %-8s %.1f req/s\n", name, state, cfg.RatePerSecond)
	}
	return nil
}

func (p *ProvidersPingCmd) Run(ctx context.Context) error {
	adapters := buildAdapters(config.Load(), slog.Default())
	if len(adapters) == 0 {
		return fmt.Errorf("no providers enabled")
	}

	failed := 0
	for _, a := range adapters {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		start := time.Now()
		err := a.Ping(pingCtx)
		cancel()

		if err != nil {
			failed++
			slog.Warn("Provider unreachable", "provider", a.Name(), "error", err)
			_, _ = fmt.Fprintf(stdout, "%-12s FAILED  %v\n", a.Name(), err)
			continue
		}
		_, _ = fmt.Fprintf(stdout, "%-12s ok      %s (breaker %s)\n", a.Name(), time.Since(start).Round(time.Millisecond), provider.BreakerState(a))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d providers unreachable", failed, len(adapters))
	}
	return nil
}
