// Package search runs a query across every provider and assembles the
// merged, filtered and paginated result.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/shelfsearch/internal/book"
	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
	"github.com/lepinkainen/shelfsearch/internal/metrics"
	"github.com/lepinkainen/shelfsearch/internal/provider"
)

const (
	// DefaultProviderTimeout bounds each provider call.
	DefaultProviderTimeout = 10 * time.Second
	defaultMaxConcurrency  = 8
)

// Coordinator fans a query out to the applicable adapters.
type Coordinator struct {
	adapters       []provider.Adapter
	timeout        time.Duration
	maxConcurrency int
	logger         *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithProviderTimeout sets the per-call deadline.
func WithProviderTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxConcurrency bounds the number of provider calls in flight.
func WithMaxConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator creates a Coordinator over adapters in registration order.
func NewCoordinator(adapters []provider.Adapter, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		adapters:       adapters,
		timeout:        DefaultProviderTimeout,
		maxConcurrency: defaultMaxConcurrency,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Adapters returns every configured adapter.
func (c *Coordinator) Adapters() []provider.Adapter {
	return c.adapters
}

// Applicable returns the adapters that accept q, in registration order.
func (c *Coordinator) Applicable(q book.SearchQuery) []provider.Adapter {
	var out []provider.Adapter
	for _, a := range c.adapters {
		if a.Accepts(q) {
			out = append(out, a)
		}
	}
	return out
}

// FanOut calls every applicable adapter concurrently and waits for all of
// them to settle. Outcomes are in registration order; one adapter's failure
// never affects another's outcome.
func (c *Coordinator) FanOut(ctx context.Context, q book.SearchQuery) []book.ProviderOutcome {
	applicable := c.Applicable(q)
	outcomes := make([]book.ProviderOutcome, len(applicable))

	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)
	for i, a := range applicable {
		g.Go(func() error {
			outcomes[i] = c.call(ctx, a, q)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

type fetchResult struct {
	records []book.RawRecord
	err     error
}

// call runs one adapter under its own deadline. The result channel is
// buffered so an adapter that finishes after the deadline never blocks.
func (c *Coordinator) call(parent context.Context, a provider.Adapter, q book.SearchQuery) book.ProviderOutcome {
	name := a.Name()
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: apperrors.NewProviderError(name, apperrors.KindTransport, fmt.Errorf("adapter panic: %v", r))}
			}
		}()
		records, err := a.Fetch(ctx, q)
		done <- fetchResult{records: records, err: err}
	}()

	var outcome book.ProviderOutcome
	select {
	case r := <-done:
		if r.err != nil {
			outcome = book.Failed(name, apperrors.AsProviderError(name, r.err))
		} else {
			outcome = book.Succeeded(name, r.records)
		}
	case <-ctx.Done():
		outcome = book.Failed(name, deadlineError(name, ctx.Err()))
	}

	elapsed := time.Since(start)
	if outcome.OK() {
		metrics.RecordProviderCall(name, "success", elapsed)
		c.logger.Debug("Provider succeeded", "provider", name, "records", len(outcome.Records), "elapsed", elapsed)
	} else {
		metrics.RecordProviderCall(name, string(outcome.Err.Kind), elapsed)
		c.logger.Warn("Provider failed", "provider", name, "kind", outcome.Err.Kind, "error", outcome.Err.Err, "elapsed", elapsed)
	}
	return outcome
}

func deadlineError(name string, err error) *apperrors.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewProviderError(name, apperrors.KindTimeout, err)
	}
	return apperrors.NewProviderError(name, apperrors.KindTransport, err)
}
