package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lepinkainen/shelfsearch/internal/book"
	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
	"github.com/lepinkainen/shelfsearch/internal/metrics"
)

// BreakerSettings tunes the per-adapter circuit breaker.
type BreakerSettings struct {
	// MinRequests is the number of calls in the window before the ratio is considered.
	MinRequests uint32
	// FailureRatio opens the circuit once reached.
	FailureRatio float64
	// Interval resets the counts while closed.
	Interval time.Duration
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MinRequests:  5,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		OpenTimeout:  30 * time.Second,
	}
}

// breakerAdapter wraps an Adapter so repeated failures fail fast.
type breakerAdapter struct {
	Adapter
	cb     *gobreaker.CircuitBreaker[[]book.RawRecord]
	logger *slog.Logger
}

// WithBreaker wraps a with a circuit breaker. Upstream rejections and caller
// cancellations do not count as failures.
func WithBreaker(a Adapter, s BreakerSettings, logger *slog.Logger) Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	name := a.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]book.RawRecord](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var pErr *apperrors.ProviderError
			return errors.As(err, &pErr) && pErr.Kind == apperrors.KindRejected
		},
	})

	return &breakerAdapter{Adapter: a, cb: cb, logger: logger}
}

// Fetch runs the wrapped Fetch through the breaker.
func (b *breakerAdapter) Fetch(ctx context.Context, q book.SearchQuery) ([]book.RawRecord, error) {
	records, err := b.cb.Execute(func() ([]book.RawRecord, error) {
		return b.Adapter.Fetch(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.NewProviderError(b.Name(), apperrors.KindTransport, fmt.Errorf("circuit breaker: %w", err))
	}
	return records, err
}

// BreakerState returns the breaker state of a wrapped adapter, or "none".
func BreakerState(a Adapter) string {
	if b, ok := a.(*breakerAdapter); ok {
		return b.cb.State().String()
	}
	return "none"
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
