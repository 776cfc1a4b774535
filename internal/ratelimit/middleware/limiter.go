package middleware

import (
	"context"
	"log/slog"
	"time"

	"passgate/internal/ratelimit/metrics"
	"passgate/internal/ratelimit/models"
	"passgate/pkg/platform/circuit"
)

// BucketStore charges one request against a key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limiter applies one limit per key. When a fallback store is configured a
// circuit breaker moves traffic to it after repeated primary failures.
type Limiter struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type LimiterOption func(*Limiter)

func WithFallback(store BucketStore, breaker *circuit.Breaker) LimiterOption {
	return func(l *Limiter) {
		l.fallback = store
		l.breaker = breaker
	}
}

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func NewLimiter(primary BucketStore, limit int, window time.Duration, logger *slog.Logger, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary: primary,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check charges key. An error means no store could answer.
func (l *Limiter) Check(ctx context.Context, key string) (*models.RateLimitResult, error) {
	if l.breaker == nil {
		return l.primary.Allow(ctx, key, l.limit, l.window)
	}
	if l.breaker.IsOpen() {
		// Probe the primary so the breaker can close again.
		if res, err := l.primary.Allow(ctx, key, l.limit, l.window); err == nil {
			if usePrimary, change := l.breaker.RecordSuccess(); usePrimary {
				l.onChange(ctx, change)
				return res, nil
			}
		} else {
			l.breaker.RecordFailure()
		}
		return l.fallback.Allow(ctx, key, l.limit, l.window)
	}

	res, err := l.primary.Allow(ctx, key, l.limit, l.window)
	if err == nil {
		l.breaker.RecordSuccess()
		return res, nil
	}
	l.metrics.IncrementStoreErrors()
	useFallback, change := l.breaker.RecordFailure()
	l.onChange(ctx, change)
	if useFallback {
		return l.fallback.Allow(ctx, key, l.limit, l.window)
	}
	return nil, err
}

func (l *Limiter) onChange(ctx context.Context, change circuit.StateChange) {
	switch {
	case change.Opened:
		l.logger.WarnContext(ctx, "rate limit store degraded, using in-process fallback",
			"breaker", l.breaker.Name(),
		)
		l.metrics.SetFallbackActive(true)
	case change.Closed:
		l.logger.InfoContext(ctx, "rate limit store recovered",
			"breaker", l.breaker.Name(),
		)
		l.metrics.SetFallbackActive(false)
	}
}
