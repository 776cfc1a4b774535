package service

import (
	"context"
	"errors"
	"time"

	"passgate/internal/registration/metrics"
	"passgate/internal/registration/models"
	dErrors "passgate/pkg/domain-errors"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/platform/sentinel"
)

// Validator checks registration passcodes against active administrators.
type Validator struct {
	admins AdminStore
	options
}

func NewValidator(admins AdminStore, opts ...Option) *Validator {
	return &Validator{admins: admins, options: newOptions(opts)}
}

// Validate normalizes rawPasscode and looks up the active admin that issued
// it. An unknown passcode is reported no sooner than minFailureDelay after
// the lookup started.
func (v *Validator) Validate(ctx context.Context, rawPasscode string) (*models.PasscodeValidation, error) {
	normalized := models.NormalizePasscode(rawPasscode)
	if normalized == "" {
		v.incrementValidation(metrics.OutcomeRejected)
		return nil, dErrors.New(dErrors.CodeInvalidArgument, models.MsgPasscodeEmpty)
	}

	start := time.Now()
	admin, err := v.admins.FindActiveByPasscode(ctx, normalized)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			v.waitFloor(ctx, start)
			v.incrementValidation(metrics.OutcomeInvalid)
			v.logAudit(ctx, audit.EventPasscodeRejected, "reason", "not_found")
			return nil, dErrors.New(dErrors.CodeNotFound, models.MsgPasscodeNotFound)
		}
		v.logger.ErrorContext(ctx, "passcode lookup failed", "error", err)
		v.incrementValidation(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.MsgPasscodeLookupFailed)
	}

	v.incrementValidation(metrics.OutcomeValid)
	v.logAudit(ctx, audit.EventPasscodeValidated, "admin_id", admin.ID)
	return &models.PasscodeValidation{
		IsValid:   true,
		AdminID:   admin.ID,
		AdminName: admin.DisplayName(),
	}, nil
}

// waitFloor blocks until minFailureDelay has passed since start or ctx ends.
func (v *Validator) waitFloor(ctx context.Context, start time.Time) {
	remaining := v.minFailureDelay - time.Since(start)
	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
