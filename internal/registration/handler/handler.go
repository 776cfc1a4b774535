package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"passgate/internal/registration/models"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/platform/httputil"
	"passgate/pkg/requestcontext"
)

const (
	RouteValidatePasscode = "/v1/validateRegistrationPasscode"
	RouteCreateUser       = "/v1/createUserWithPasscode"
)

type PasscodeValidator interface {
	Validate(ctx context.Context, rawPasscode string) (*models.PasscodeValidation, error)
}

type Registrar interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegistrationResult, error)
}

// RouteGuard returns the middleware run in front of a callable route.
type RouteGuard func(route string) []func(http.Handler) http.Handler

// Handler serves the two callable registration functions.
type Handler struct {
	logger    *slog.Logger
	validator PasscodeValidator
	registrar Registrar
}

func New(validator PasscodeValidator, registrar Registrar, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		validator: validator,
		registrar: registrar,
	}
}

// Register mounts the callable routes on r, each behind guard(route).
func (h *Handler) Register(r chi.Router, guard RouteGuard) {
	with := func(route string) chi.Router {
		if guard == nil {
			return r
		}
		return r.With(guard(route)...)
	}
	with(RouteValidatePasscode).Post(RouteValidatePasscode, h.handleValidatePasscode)
	with(RouteCreateUser).Post(RouteCreateUser, h.handleCreateUser)
}

func (h *Handler) handleValidatePasscode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ValidatePasscodeRequest
	if err := httputil.DecodeData(r, &req, models.MsgPasscodeInvalidType); err != nil {
		h.reject(ctx, w, "invalid validate passcode request", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.reject(ctx, w, "invalid validate passcode request", err)
		return
	}

	result, err := h.validator.Validate(ctx, *req.Passcode)
	if err != nil {
		h.fail(ctx, w, "passcode validation failed", err)
		return
	}
	httputil.WriteResult(w, result)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := httputil.DecodeData(r, &req, models.MsgRegisterMissing); err != nil {
		h.reject(ctx, w, "invalid create user request", err)
		return
	}

	result, err := h.registrar.Register(ctx, req)
	if err != nil {
		h.fail(ctx, w, "registration failed", err)
		return
	}
	httputil.WriteResult(w, result)
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

// fail logs err in full and writes only its client-safe classification.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"code", string(dErrors.CodeOf(err)),
		"error", err,
	)
	httputil.WriteError(w, err)
}
