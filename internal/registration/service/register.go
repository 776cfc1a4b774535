package service

import (
	"context"
	"errors"
	"time"

	"passgate/internal/identity"
	"passgate/internal/registration/metrics"
	"passgate/internal/registration/models"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/email"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/requestcontext"
)

// ErrPartialRegistration marks a failure after the identity account was
// created but before its profile was stored.
var ErrPartialRegistration = errors.New("identity account created without profile")

const (
	stepValidatePasscode = "validate_passcode"
	stepCreateAccount    = "create_account"
	stepPersistProfile   = "persist_profile"
)

// Service runs self-registration: passcode check, account creation, then the
// pending profile. The last two are not atomic; see ErrPartialRegistration.
type Service struct {
	validator PasscodeValidator
	identity  IdentityProvider
	profiles  ProfileStore
	options
}

func New(validator PasscodeValidator, provider IdentityProvider, profiles ProfileStore, opts ...Option) *Service {
	return &Service{
		validator: validator,
		identity:  provider,
		profiles:  profiles,
		options:   newOptions(opts),
	}
}

// Register creates an account and a pending profile linked to the admin
// whose passcode was supplied.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.RegistrationResult, error) {
	if s.metrics != nil {
		defer s.metrics.ObserveRegistration(time.Now())
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incrementRegistration(metrics.OutcomeRejected)
		return nil, err
	}

	st := &registrationState{req: req}
	err := runSaga(ctx, s.steps(), st)
	if err != nil {
		return nil, s.classify(ctx, st, err)
	}

	s.incrementRegistration(metrics.OutcomeSuccess)
	s.logAudit(ctx, audit.EventUserRegistered,
		"user_id", st.account.ID,
		"admin_id", st.validation.AdminID,
		"email", email.Mask(req.Email),
	)
	return &models.RegistrationResult{
		Success: true,
		UserID:  st.account.ID,
		Message: models.MsgRegisterSucceeded,
	}, nil
}

func (s *Service) steps() []sagaStep {
	return []sagaStep{
		{name: stepValidatePasscode, run: s.validatePasscode},
		{name: stepCreateAccount, run: s.createAccount, compensate: s.recordOrphan},
		{name: stepPersistProfile, run: s.persistProfile},
	}
}

func (s *Service) validatePasscode(ctx context.Context, st *registrationState) error {
	result, err := s.validator.Validate(ctx, st.req.Passcode)
	if err != nil {
		return err
	}
	if result == nil || !result.IsValid {
		return dErrors.New(dErrors.CodePermissionDenied, models.MsgPasscodeNotFound)
	}
	st.validation = result
	return nil
}

func (s *Service) createAccount(ctx context.Context, st *registrationState) error {
	account, err := s.identity.CreateAccount(ctx, identity.AccountRequest{
		Email:       st.req.Email,
		Password:    st.req.Password,
		DisplayName: st.req.Name,
	})
	if err != nil {
		return err
	}
	st.account = account
	return nil
}

func (s *Service) persistProfile(ctx context.Context, st *registrationState) error {
	user, err := models.NewPendingUser(st.account.ID, st.req.Name, st.req.Email, st.validation.AdminID, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	if err := s.profiles.Create(ctx, user); err != nil {
		return err
	}
	st.user = user
	return nil
}

// recordOrphan compensates a created account whose profile write failed.
// The account is kept; the orphan is reported for reconciliation.
func (s *Service) recordOrphan(ctx context.Context, st *registrationState, cause error) {
	s.logger.ErrorContext(ctx, "account created but profile write failed",
		"event", string(audit.EventRegistrationPartialFailure),
		"user_id", st.account.ID,
		"admin_id", st.validation.AdminID,
		"request_id", requestcontext.RequestID(ctx),
		"error", cause,
	)
	if s.metrics != nil {
		s.metrics.IncrementPartialFailure()
	}
	s.logAudit(ctx, audit.EventRegistrationPartialFailure,
		"user_id", st.account.ID,
		"admin_id", st.validation.AdminID,
		"email", email.Mask(st.req.Email),
		"reason", stepPersistProfile,
	)
	if s.orphans == nil {
		return
	}
	err := s.orphans.Record(ctx, models.OrphanedAccount{
		UserID:     st.account.ID,
		Email:      st.req.Email,
		AdminID:    st.validation.AdminID,
		RequestID:  requestcontext.RequestID(ctx),
		Reason:     cause.Error(),
		DetectedAt: requestcontext.Now(ctx).UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record orphaned account",
			"user_id", st.account.ID,
			"error", err,
		)
	}
}

// classify turns a saga failure into the error returned to the caller.
func (s *Service) classify(ctx context.Context, st *registrationState, err error) error {
	var se *stepError
	if !errors.As(err, &se) {
		s.incrementRegistration(metrics.OutcomeFailed)
		return dErrors.Wrap(err, dErrors.CodeInternal, models.MsgRegisterFailed)
	}

	switch se.step {
	case stepValidatePasscode:
		s.incrementRegistration(metrics.OutcomeRejected)
		if dErrors.IsClassified(se.err) {
			return se.err
		}
		return dErrors.Wrap(se.err, dErrors.CodeInternal, models.MsgPasscodeLookupFailed)
	case stepPersistProfile:
		s.incrementRegistration(metrics.OutcomePartial)
		return dErrors.Wrap(errors.Join(ErrPartialRegistration, se), dErrors.CodeInternal, models.MsgRegisterFailed)
	default:
		s.logger.ErrorContext(ctx, "registration failed",
			"step", se.step,
			"email", email.Mask(st.req.Email),
			"error", se.err,
		)
		s.incrementRegistration(metrics.OutcomeFailed)
		s.logAudit(ctx, audit.EventRegistrationFailed,
			"email", email.Mask(st.req.Email),
			"reason", se.step,
		)
		return dErrors.Wrap(se, dErrors.CodeInternal, models.MsgRegisterFailed)
	}
}
