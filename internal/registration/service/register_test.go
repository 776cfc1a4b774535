package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"passgate/internal/identity"
	"passgate/internal/registration/metrics"
	"passgate/internal/registration/models"
	"passgate/internal/registration/service/mocks"
	adminstore "passgate/internal/registration/store/admin"
	"passgate/internal/registration/store/orphan"
	"passgate/internal/registration/store/profile"
	dErrors "passgate/pkg/domain-errors"
	audit "passgate/pkg/platform/audit"
	"passgate/pkg/platform/audit/publisher"
	auditmemory "passgate/pkg/platform/audit/store/memory"
	"passgate/pkg/platform/sentinel"
	"passgate/pkg/requestcontext"
)

type RegisterSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	validator  *mocks.MockPasscodeValidator
	identity   *mocks.MockIdentityProvider
	profiles   *mocks.MockProfileStore
	orphans    *mocks.MockOrphanRecorder
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
	ctx        context.Context
	now        time.Time
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.validator = mocks.NewMockPasscodeValidator(s.ctrl)
	s.identity = mocks.NewMockIdentityProvider(s.ctrl)
	s.profiles = mocks.NewMockProfileStore(s.ctrl)
	s.orphans = mocks.NewMockOrphanRecorder(s.ctrl)
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.validator, s.identity, s.profiles,
		WithLogger(discardLogger()),
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
		WithOrphanRecorder(s.orphans),
	)
	s.now = time.Date(2026, 6, 1, 14, 30, 0, 123000000, time.UTC)
	s.ctx = requestcontext.WithTime(requestcontext.WithRequestID(context.Background(), "req-42"), s.now)
}

func (s *RegisterSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    "jane@example.com",
		Password: "s3cret!",
		Name:     "Jane",
		Passcode: "abc123",
	}
}

func (s *RegisterSuite) expectValidPasscode() {
	s.validator.EXPECT().
		Validate(gomock.Any(), "abc123").
		Return(&models.PasscodeValidation{IsValid: true, AdminID: "admin-1", AdminName: "Dr. Rivera"}, nil)
}

func (s *RegisterSuite) TestMissingFieldsFailBeforeAnyCall() {
	cases := map[string]func(*models.RegisterRequest){
		"email":            func(r *models.RegisterRequest) { r.Email = "" },
		"whitespace email": func(r *models.RegisterRequest) { r.Email = "   " },
		"password":         func(r *models.RegisterRequest) { r.Password = "" },
		"passcode":         func(r *models.RegisterRequest) { r.Passcode = "" },
		"blank passcode":   func(r *models.RegisterRequest) { r.Passcode = "  " },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			req := validRequest()
			mutate(&req)
			result, err := s.service.Register(s.ctx, req)
			s.Nil(result)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
			s.Equal(models.MsgRegisterMissing, dErrors.MessageOf(err, ""))
		})
	}
}

func (s *RegisterSuite) TestSuccess() {
	s.expectValidPasscode()
	s.identity.EXPECT().
		CreateAccount(gomock.Any(), identity.AccountRequest{Email: "jane@example.com", Password: "s3cret!", DisplayName: "Jane"}).
		Return(&identity.Account{ID: "uid-1", Email: "jane@example.com"}, nil)

	var stored *models.User
	s.profiles.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			stored = u
			return nil
		})

	result, err := s.service.Register(s.ctx, validRequest())
	s.Require().NoError(err)
	s.Equal(&models.RegistrationResult{Success: true, UserID: "uid-1", Message: models.MsgRegisterSucceeded}, result)

	s.Require().NotNil(stored)
	s.Equal("uid-1", stored.ID)
	s.Equal("Jane", stored.Name)
	s.Equal("jane@example.com", stored.Contact)
	s.Equal(models.ContactTypeEmail, stored.ContactType)
	s.Equal("", stored.Notes)
	s.Equal([]string{}, stored.PlanIDs)
	s.Equal("admin-1", stored.AdminID)
	s.True(stored.IsPending())
	s.Equal(s.now, stored.RegistrationDate)
	s.Equal(stored.RegistrationDate, stored.FirstLoginTime)
	s.Equal(stored.RegistrationDate, stored.LastLoginTime)

	events, _ := s.auditStore.ListByAction(s.ctx, audit.EventUserRegistered)
	s.Require().Len(events, 1)
	s.Equal("uid-1", events[0].UserID)
	s.Equal("admin-1", events[0].AdminID)
	s.Equal("req-42", events[0].RequestID)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess)), 0)
}

func (s *RegisterSuite) TestOmittedNameDefaultsToEmpty() {
	s.expectValidPasscode()
	s.identity.EXPECT().
		CreateAccount(gomock.Any(), identity.AccountRequest{Email: "jane@example.com", Password: "s3cret!", DisplayName: ""}).
		Return(&identity.Account{ID: "uid-2"}, nil)
	s.profiles.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			s.Equal("", u.Name)
			return nil
		})

	req := validRequest()
	req.Name = ""
	_, err := s.service.Register(s.ctx, req)
	s.Require().NoError(err)
}

func (s *RegisterSuite) TestValidatorFailurePropagatesKind() {
	s.validator.EXPECT().
		Validate(gomock.Any(), "abc123").
		Return(nil, dErrors.New(dErrors.CodeNotFound, models.MsgPasscodeNotFound))

	result, err := s.service.Register(s.ctx, validRequest())
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal(models.MsgPasscodeNotFound, dErrors.MessageOf(err, ""))
}

func (s *RegisterSuite) TestInvalidValidationResultIsPermissionDenied() {
	s.validator.EXPECT().
		Validate(gomock.Any(), "abc123").
		Return(&models.PasscodeValidation{IsValid: false}, nil)

	_, err := s.service.Register(s.ctx, validRequest())
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	s.Equal(models.MsgPasscodeNotFound, dErrors.MessageOf(err, ""))
}

func (s *RegisterSuite) TestAccountCreationFailureIsInternal() {
	for name, cause := range map[string]error{
		"duplicate email": identity.ErrEmailTaken,
		"weak password":   identity.ErrWeakPassword,
		"outage":          errors.New("identity provider unavailable"),
	} {
		s.Run(name, func() {
			s.expectValidPasscode()
			s.identity.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil, cause)

			result, err := s.service.Register(s.ctx, validRequest())
			s.Nil(result)
			s.True(dErrors.HasCode(err, dErrors.CodeInternal))
			s.Equal(models.MsgRegisterFailed, dErrors.MessageOf(err, ""))
			s.False(errors.Is(err, ErrPartialRegistration))
			s.ErrorIs(err, cause)
		})
	}

	events, _ := s.auditStore.ListByAction(s.ctx, audit.EventRegistrationFailed)
	s.Len(events, 3)
}

func (s *RegisterSuite) TestProfileFailureIsPartialRegistration() {
	s.expectValidPasscode()
	s.identity.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		Return(&identity.Account{ID: "uid-9"}, nil)
	s.profiles.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(errors.New("write timeout"))
	s.orphans.EXPECT().
		Record(gomock.Any(), models.OrphanedAccount{
			UserID:     "uid-9",
			Email:      "jane@example.com",
			AdminID:    "admin-1",
			RequestID:  "req-42",
			Reason:     "write timeout",
			DetectedAt: s.now,
		}).
		Return(nil)

	result, err := s.service.Register(s.ctx, validRequest())
	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(models.MsgRegisterFailed, dErrors.MessageOf(err, ""))
	s.ErrorIs(err, ErrPartialRegistration)

	events, _ := s.auditStore.ListByAction(s.ctx, audit.EventRegistrationPartialFailure)
	s.Require().Len(events, 1)
	s.Equal(audit.CategorySecurity, events[0].Category)
	s.Equal("uid-9", events[0].UserID)
	s.InDelta(1, testutil.ToFloat64(s.metrics.PartialFailures), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues(metrics.OutcomePartial)), 0)
}

func (s *RegisterSuite) TestOrphanRecorderErrorDoesNotMaskPartialFailure() {
	s.expectValidPasscode()
	s.identity.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(&identity.Account{ID: "uid-10"}, nil)
	s.profiles.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)
	s.orphans.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("orphan table missing"))

	_, err := s.service.Register(s.ctx, validRequest())
	s.ErrorIs(err, ErrPartialRegistration)
	s.ErrorIs(err, sentinel.ErrUnavailable)
}

// End to end over the in-memory adapters.
func TestRegisterWithInMemoryAdapters(t *testing.T) {
	ctx := context.Background()
	admins := adminstore.NewInMemory()
	rec, err := models.NewAdminRecord("admin-7", "", "ABC123", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := admins.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	accounts := identity.NewInMemory()
	profiles := profile.NewInMemory()
	svc := New(NewValidator(admins, WithMinFailureDelay(0), WithLogger(discardLogger())), accounts, profiles,
		WithLogger(discardLogger()))

	result, err := svc.Register(ctx, models.RegisterRequest{Email: " Sam@Example.com ", Password: "hunter22", Passcode: " abc123 "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	user, err := profiles.FindByID(ctx, result.UserID)
	if err != nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if user.AdminID != "admin-7" || !user.IsPending() || user.Contact != "Sam@Example.com" {
		t.Fatalf("unexpected profile %+v", user)
	}

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "sam@example.com", Password: "other-pass", Passcode: "ABC123"})
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("duplicate email should fail internally, got %v", err)
	}
	if n, _ := profiles.Count(ctx); n != 1 {
		t.Fatalf("duplicate registration must not add a profile, have %d", n)
	}
}

func TestRegisterWithInactiveAdminCreatesNoAccount(t *testing.T) {
	ctx := context.Background()
	admins := adminstore.NewInMemory()
	rec, err := models.NewAdminRecord("admin-3", "Retired", "GONE42", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	rec.Active = false
	if err := admins.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	accounts := identity.NewInMemory()
	profiles := profile.NewInMemory()
	svc := New(NewValidator(admins, WithMinFailureDelay(0), WithLogger(discardLogger())), accounts, profiles,
		WithLogger(discardLogger()))

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "late@example.com", Password: "hunter22", Passcode: "gone42"})
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		t.Fatalf("inactive admin passcode should be not found, got %v", err)
	}
	if accounts.Count() != 0 {
		t.Fatalf("no account may be created, have %d", accounts.Count())
	}
	if n, _ := profiles.Count(ctx); n != 0 {
		t.Fatalf("no profile may be stored, have %d", n)
	}
}

type failingProfiles struct{}

func (failingProfiles) Create(context.Context, *models.User) error {
	return errors.New("disk full")
}

func TestPartialFailureLeavesAccountWithoutProfile(t *testing.T) {
	ctx := context.Background()
	admins := adminstore.NewInMemory()
	rec, _ := models.NewAdminRecord("admin-1", "Admin", "P1", time.Now())
	_ = admins.Save(ctx, rec)

	accounts := identity.NewInMemory()
	orphans := orphan.NewInMemory()
	svc := New(NewValidator(admins, WithMinFailureDelay(0), WithLogger(discardLogger())), accounts, failingProfiles{},
		WithLogger(discardLogger()),
		WithOrphanRecorder(orphans),
	)

	_, err := svc.Register(ctx, models.RegisterRequest{Email: "amy@example.com", Password: "hunter22", Passcode: "p1"})
	if !errors.Is(err, ErrPartialRegistration) {
		t.Fatalf("expected partial registration, got %v", err)
	}
	if accounts.Count() != 1 {
		t.Fatalf("account should remain, have %d", accounts.Count())
	}
	list, _ := orphans.ListUnresolved(ctx, 0)
	if len(list) != 1 || list[0].Email != "amy@example.com" || list[0].AdminID != "admin-1" {
		t.Fatalf("unexpected orphans %+v", list)
	}
}
