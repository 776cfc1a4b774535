// Package middleware throttles callable routes per client IP.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"passgate/internal/ratelimit/metrics"
	"passgate/internal/ratelimit/models"
	dErrors "passgate/pkg/domain-errors"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/platform/audit/observability"
	"passgate/pkg/platform/httputil"
	"passgate/pkg/requestcontext"
)

// MsgRateLimited is the client-facing message for throttled requests.
const MsgRateLimited = "Too many requests. Please try again later."

type RateLimiter interface {
	Check(ctx context.Context, key string) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter   RateLimiter
	logger    *slog.Logger
	publisher observability.Emitter
	metrics   *metrics.Metrics
	disabled  bool
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithAuditPublisher(p observability.Emitter) Option {
	return func(m *Middleware) {
		m.publisher = p
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests to route by client IP. Store failures let the
// request through.
func (m *Middleware) RateLimit(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Check(ctx, models.IPKey(route, ip))
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check IP rate limit",
					"error", err,
					"route", route,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.metrics.IncrementRejected(route)
				observability.LogAudit(ctx, m.logger, m.publisher, audit.EventRateLimitExceeded,
					"ip", ip,
					"route", route,
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeResourceExhausted, MsgRateLimited))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
