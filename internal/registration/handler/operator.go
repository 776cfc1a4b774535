package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"passgate/internal/registration/models"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/platform/httputil"
)

type AdminLister interface {
	ListActive(ctx context.Context) ([]*models.AdminRecord, error)
}

type OrphanLister interface {
	ListUnresolved(ctx context.Context, limit int) ([]models.OrphanedAccount, error)
}

// OperatorHandler serves read-only views for the people running the service.
// It is mounted behind the admin token.
type OperatorHandler struct {
	logger  *slog.Logger
	admins  AdminLister
	orphans OrphanLister
}

func NewOperator(admins AdminLister, orphans OrphanLister, logger *slog.Logger) *OperatorHandler {
	return &OperatorHandler{logger: logger, admins: admins, orphans: orphans}
}

func (h *OperatorHandler) Register(r chi.Router) {
	r.Get("/admins", h.handleListAdmins)
	r.Get("/orphans", h.handleListOrphans)
}

func (h *OperatorHandler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.ListActive(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list admins failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if admins == nil {
		admins = []*models.AdminRecord{}
	}
	httputil.WriteResult(w, admins)
}

func (h *OperatorHandler) handleListOrphans(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	orphans, err := h.orphans.ListUnresolved(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list orphans failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if orphans == nil {
		orphans = []models.OrphanedAccount{}
	}
	httputil.WriteResult(w, orphans)
}
