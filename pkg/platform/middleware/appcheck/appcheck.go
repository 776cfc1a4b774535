// Package appcheck rejects requests that do not carry a verifiable
// app-integrity token.
package appcheck

import (
	"context"
	"log/slog"
	"net/http"

	dErrors "passgate/pkg/domain-errors"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/platform/audit/observability"
	"passgate/pkg/platform/httputil"
	"passgate/pkg/requestcontext"
)

// DefaultHeader is the header Firebase clients send the App Check token in.
const DefaultHeader = "X-Firebase-AppCheck"

// MsgRequired is returned for a missing or unverifiable token.
const MsgRequired = "The function must be called from an App Check verified app."

// TokenVerifier returns the attested app id for a valid token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type options struct {
	header    string
	publisher observability.Emitter
}

type Option func(*options)

func WithHeader(header string) Option {
	return func(o *options) {
		if header != "" {
			o.header = header
		}
	}
}

func WithAuditPublisher(p observability.Emitter) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// Require lets a request through only when the attestation header verifies.
// The attested app id is stored in the request context.
func Require(verifier TokenVerifier, logger *slog.Logger, opts ...Option) func(http.Handler) http.Handler {
	o := options{header: DefaultHeader}
	for _, opt := range opts {
		opt(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(o.header)
			if token == "" {
				reject(ctx, w, logger, o.publisher, "missing")
				return
			}

			appID, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.DebugContext(ctx, "attestation verification failed",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				reject(ctx, w, logger, o.publisher, "invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithAppID(ctx, appID)))
		})
	}
}

func reject(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, publisher observability.Emitter, reason string) {
	logger.WarnContext(ctx, "request rejected - attestation "+reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	observability.LogAudit(ctx, logger, publisher, audit.EventAttestationRejected,
		"ip", requestcontext.ClientIP(ctx),
		"reason", reason,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeFailedPrecondition, MsgRequired))
}
