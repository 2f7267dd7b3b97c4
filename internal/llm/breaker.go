package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"go.uber.org/zap"
)

// BreakerProvider is a decorator that stops calling a provider after a run of
// consecutive failures. While the breaker is open, Generate fails fast and
// evaluation goes straight to the keyword fallback.
type BreakerProvider struct {
	inner   Provider
	breaker circuitbreaker.CircuitBreaker[*Response]
}

// WithCircuitBreaker wraps a Provider with a circuit breaker. A config with
// ConsecutiveFailures <= 0 returns p unchanged.
func WithCircuitBreaker(p Provider, cfg BreakerConfig, logger *zap.Logger) Provider {
	if cfg.ConsecutiveFailures <= 0 {
		return p
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 60 * time.Second
	}
	threshold := cfg.ConsecutiveFailures

	bp := &BreakerProvider{inner: p}
	bp.breaker = circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= threshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("classifier circuit breaker state change",
				zap.String("model", p.ModelID()),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return bp
}

func (b *BreakerProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return b.breaker.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return b.inner.Generate(ctx, req)
	})
}

func (b *BreakerProvider) ModelID() string {
	return b.inner.ModelID()
}
