// Package service validates registration passcodes and runs the
// self-registration flow.
package service

import (
	"context"
	"log/slog"
	"time"

	"passgate/internal/identity"
	"passgate/internal/registration/metrics"
	"passgate/internal/registration/models"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/platform/audit/observability"
)

// DefaultMinFailureDelay is the floor on how fast an unknown passcode is reported.
const DefaultMinFailureDelay = time.Second

type AdminStore interface {
	FindActiveByPasscode(ctx context.Context, normalized string) (*models.AdminRecord, error)
}

type ProfileStore interface {
	Create(ctx context.Context, user *models.User) error
}

type IdentityProvider interface {
	CreateAccount(ctx context.Context, req identity.AccountRequest) (*identity.Account, error)
}

// PasscodeValidator is satisfied by *Validator.
type PasscodeValidator interface {
	Validate(ctx context.Context, rawPasscode string) (*models.PasscodeValidation, error)
}

// OrphanRecorder is told about accounts left without a profile.
type OrphanRecorder interface {
	Record(ctx context.Context, orphan models.OrphanedAccount) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type options struct {
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	metrics         *metrics.Metrics
	minFailureDelay time.Duration
	orphans         OrphanRecorder
}

// Option configures a Validator or a Service. Options that do not apply to
// the component being built are ignored.
type Option func(o *options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(o *options) {
		o.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMinFailureDelay sets the validator's failure floor. Zero disables it.
func WithMinFailureDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.minFailureDelay = d
		}
	}
}

func WithOrphanRecorder(r OrphanRecorder) Option {
	return func(o *options) {
		o.orphans = r
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:          slog.Default(),
		minFailureDelay: DefaultMinFailureDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	observability.LogAudit(ctx, o.logger, o.auditPublisher, event, attributes...)
}

func (o *options) incrementValidation(outcome string) {
	if o.metrics != nil {
		o.metrics.IncrementValidation(outcome)
	}
}

func (o *options) incrementRegistration(outcome string) {
	if o.metrics != nil {
		o.metrics.IncrementRegistration(outcome)
	}
}
