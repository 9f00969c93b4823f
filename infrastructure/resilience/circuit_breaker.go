// Package resilience guards calls to the spreadsheet and mail providers.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"watchbox/config"
	"watchbox/domain/shared"
	"watchbox/pkg/logger"
	"watchbox/pkg/metrics"
)

// ErrCircuitOpen returned without calling the downstream while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Guard runs fn under a per-call timeout and, when enabled, a circuit breaker.
type Guard struct {
	name    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewGuard builds a guard for one downstream. A zero timeout disables the deadline.
func NewGuard(name string, timeout time.Duration, cfg config.DispatchConfig, m *metrics.Metrics) *Guard {
	g := &Guard{name: name, timeout: timeout, metrics: m}
	if !cfg.BreakerEnabled {
		return g
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// not-configured is an operator problem, not a sign the provider is down
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, shared.ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.SetCircuitBreakerState(name, int(to))
		},
	})
	m.SetCircuitBreakerState(name, int(gobreaker.StateClosed))
	return g
}

func (g *Guard) Name() string {
	return g.name
}

// State reports the breaker state; always closed when the breaker is disabled.
func (g *Guard) State() gobreaker.State {
	if g.cb == nil {
		return gobreaker.StateClosed
	}
	return g.cb.State()
}

// Do executes fn. Breaker rejections are reported as shared.ErrUnavailable.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.cb == nil {
		return fn(ctx)
	}

	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logger.Debug("Circuit breaker rejected call", zap.String("name", g.name), zap.Error(err))
		return shared.NewUnavailableError(g.name, errors.Join(ErrCircuitOpen, err))
	}
	return err
}
