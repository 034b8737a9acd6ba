package tmdb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/oggyb/movienight/internal/metrics"
)

// CircuitBreakerProvider wraps a Provider with a circuit breaker.
type CircuitBreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[*Movie]
	name string
}

// NewCircuitBreakerProvider wraps next.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 5 consecutive failures
func NewCircuitBreakerProvider(next Provider, logger *slog.Logger) *CircuitBreakerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	name := "tmdb-api"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Movie](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// canceled calls do not count as failures
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state transition", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &CircuitBreakerProvider{next: next, cb: cb, name: name}
}

// TrendingMovie implements Provider.
func (p *CircuitBreakerProvider) TrendingMovie(ctx context.Context) (*Movie, error) {
	movie, err := p.cb.Execute(func() (*Movie, error) {
		return p.next.TrendingMovie(ctx)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	}
	return movie, err
}

// State exposes the breaker state, mostly for health reporting.
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

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
